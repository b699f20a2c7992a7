package synth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

func TestSwapCandidates(t *testing.T) {
	tests := []struct {
		nodeType string
		want     []string
	}{
		{"n8n-nodes-base.slack", []string{"discord", "mattermost", "microsoftTeams", "telegram"}},
		{"n8n-nodes-base.postgres", []string{"mysql", "mssql", "mariaDb", "mongoDb"}},
		// Trigger suffix is stripped, but the dedicated gmailTrigger rule
		// still claims the stripped form first.
		{"n8n-nodes-base.gmailTrigger", []string{"emailTrigger", "microsoftOutlookTrigger"}},
		{"n8n-nodes-base.stickyNote", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SwapCandidates(tt.nodeType), "type %q", tt.nodeType)
	}
}

func TestSwapCandidatesFirstRuleWins(t *testing.T) {
	// "webhook" appears both as its own rule and inside manualTrigger's
	// swap list; the webhook rule is declared first and must win.
	assert.Equal(t, []string{"httpRequest", "formTrigger", "manualTrigger"},
		SwapCandidates("n8n-nodes-base.webhook"))
}

func TestSwapNodePreservesTriggerStatus(t *testing.T) {
	node := map[string]any{
		"type": "n8n-nodes-base.scheduleTrigger",
		"name": "scheduleTrigger daily",
	}
	swapNode(node, "manualTrigger")
	assert.Equal(t, "n8n-nodes-base.manualTrigger", node["type"])
	assert.Equal(t, "manualTrigger daily", node["name"])

	node = map[string]any{"type": "n8n-nodes-base.webhook"}
	swapNode(node, "httpRequest")
	assert.Equal(t, "n8n-nodes-base.httpRequest", node["type"])

	// A trigger swapped to a plain service keeps its trigger role.
	node = map[string]any{"type": "n8n-nodes-base.gmailTrigger"}
	swapNode(node, "email")
	assert.Equal(t, "n8n-nodes-base.emailTrigger", node["type"])
}

func archetypeJSON() string {
	return `{
		"id": "arch-1",
		"name": "Lead Capture",
		"nodes": [
			{"type": "n8n-nodes-base.webhook", "name": "webhook in"},
			{"type": "n8n-nodes-base.slack", "name": "slack notify"},
			{"type": "n8n-nodes-base.set", "name": "shape"}
		],
		"connections": {"webhook in": {"main": [[{"node": "slack notify"}]]}}
	}`
}

func setupArchetypes(t *testing.T) (archetypesDir, outDir string) {
	t.Helper()
	dir := t.TempDir()
	archetypesDir = filepath.Join(dir, "archetypes")
	require.NoError(t, os.MkdirAll(filepath.Join(archetypesDir, "sales"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(archetypesDir, "sales", "archetype_1_lead.json"),
		[]byte(archetypeJSON()), 0o644))
	return archetypesDir, filepath.Join(dir, "synthetic_v2")
}

func TestRunGeneratesVariations(t *testing.T) {
	archetypes, out := setupArchetypes(t)

	stats, err := Run(Options{
		ArchetypesDir: archetypes,
		OutputDir:     out,
		Variations:    5,
		IDs:           NewFixedGenerator("id-1", "id-2", "id-3", "id-4", "id-5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Archetypes)
	assert.Equal(t, 5, stats.Generated)
	assert.Zero(t, stats.Errors)

	files, err := workflow.WalkFiles(filepath.Join(out, "sales"), ".json")
	require.NoError(t, err)
	require.Len(t, files, 5)

	data, err := os.ReadFile(filepath.Join(out, "sales", "archetype_1_lead_var1.json"))
	require.NoError(t, err)
	var wf map[string]any
	require.NoError(t, json.Unmarshal(data, &wf))

	assert.Equal(t, "Lead Capture_v1", wf["name"])
	meta := wf["meta"].(map[string]any)
	assert.Equal(t, true, meta["generated"])
	assert.Equal(t, "Lead Capture", meta["sourceArchetype"])
	assert.Equal(t, "id-1", wf["id"])

	// Connections survive swapping untouched.
	assert.Contains(t, wf, "connections")
}

func TestRunDeterministicWithSeed(t *testing.T) {
	read := func(out string) map[string]string {
		files, err := workflow.WalkFiles(out, ".json")
		require.NoError(t, err)
		got := make(map[string]string)
		for _, f := range files {
			data, err := os.ReadFile(f)
			require.NoError(t, err)
			got[filepath.Base(f)] = string(data)
		}
		return got
	}

	archetypesA, outA := setupArchetypes(t)
	_, err := Run(Options{
		ArchetypesDir: archetypesA, OutputDir: outA,
		Variations: 4, Seed: 7, IDs: NewFixedGenerator("x"),
	})
	require.NoError(t, err)

	archetypesB, outB := setupArchetypes(t)
	_, err = Run(Options{
		ArchetypesDir: archetypesB, OutputDir: outB,
		Variations: 4, Seed: 7, IDs: NewFixedGenerator("x"),
	})
	require.NoError(t, err)

	assert.Equal(t, read(outA), read(outB))
}

func TestRunSkipsArchetypesWithoutSwappableNodes(t *testing.T) {
	dir := t.TempDir()
	archetypes := filepath.Join(dir, "archetypes")
	require.NoError(t, os.MkdirAll(filepath.Join(archetypes, "misc"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(archetypes, "misc", "plain.json"),
		[]byte(`{"name":"Plain","nodes":[{"type":"n8n-nodes-base.stickyNote"}]}`), 0o644))

	stats, err := Run(Options{
		ArchetypesDir: archetypes,
		OutputDir:     filepath.Join(dir, "out"),
		Variations:    3,
		IDs:           NewFixedGenerator("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NoSwappable)
	assert.Zero(t, stats.Generated)
}

func TestRunMissingArchetypesDirFatal(t *testing.T) {
	_, err := Run(Options{
		ArchetypesDir: filepath.Join(t.TempDir(), "nope"),
		OutputDir:     t.TempDir(),
	})
	require.Error(t, err)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.NewID())
	assert.Equal(t, "b", g.NewID())
	assert.Equal(t, "b", g.NewID())

	assert.Equal(t, "fixed-id", NewFixedGenerator().NewID())
}
