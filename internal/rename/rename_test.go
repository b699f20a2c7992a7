package rename

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

func TestLooksLikeHash(t *testing.T) {
	tests := []struct {
		stem string
		want bool
	}{
		{"a1b2c3d4e5f67890", true},
		{"ABCDEF012345", true},
		{"0001_some_export", true},
		{"a1b2c3", false},            // hex but too short
		{"slack_openai", false},      // descriptive
		{"123_short_prefix", false},  // needs 4 digits
		{"deadbeefdeadbeefzz", false}, // non-hex tail
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksLikeHash(tt.stem), "stem %q", tt.stem)
	}
}

func writeWorkflow(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunRenamesHashedFile(t *testing.T) {
	root := t.TempDir()
	writeWorkflow(t, filepath.Join(root, "synthetic", "a1b2c3d4e5f67890.json"),
		`{"name":"X","nodes":[
			{"type":"n8n-nodes-base.slack"},
			{"type":"n8n-nodes-base.set"},
			{"type":"n8n-nodes-base.openAi"}
		]}`)

	stats, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.Equal(t, Stats{Processed: 1, Renamed: 1}, stats)

	// set is a utility node and contributes nothing; encounter order holds.
	assert.FileExists(t, filepath.Join(root, "synthetic", "slack_openai.json"))
	assert.NoFileExists(t, filepath.Join(root, "synthetic", "a1b2c3d4e5f67890.json"))
}

func TestRunArchetypeLeads(t *testing.T) {
	root := t.TempDir()
	writeWorkflow(t, filepath.Join(root, "synthetic", "deadbeefdeadbeef.json"),
		`{"nodes":[{"type":"n8n-nodes-base.hubspot"}],"meta":{"archetype":"crm_sync"}}`)

	_, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "synthetic", "crm_sync_hubspot.json"))
}

func TestRunNeverTouchesDescriptiveNames(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "external", "daily_crm_sync.json")
	writeWorkflow(t, path, `{"nodes":[{"type":"n8n-nodes-base.slack"}]}`)

	stats, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Renamed)
	assert.FileExists(t, path)
}

func TestRunDeduplicatesCollidingNames(t *testing.T) {
	root := t.TempDir()
	content := `{"nodes":[{"type":"n8n-nodes-base.slack"}]}`
	writeWorkflow(t, filepath.Join(root, "synthetic", "aaaaaaaaaaaa.json"), content)
	writeWorkflow(t, filepath.Join(root, "synthetic", "bbbbbbbbbbbb.json"), content)

	stats, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Renamed)
	assert.Equal(t, 1, stats.Duplicates)
	assert.FileExists(t, filepath.Join(root, "synthetic", "slack.json"))
	assert.FileExists(t, filepath.Join(root, "synthetic", "slack_1.json"))
}

func TestRunFallsBackToWorkflowName(t *testing.T) {
	root := t.TempDir()
	// Only utility nodes: no integration parts collected.
	writeWorkflow(t, filepath.Join(root, "synthetic", "cafecafecafe.json"),
		`{"name":"Weekly Digest","nodes":[{"type":"n8n-nodes-base.set"}]}`)

	_, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "synthetic", "weekly_digest.json"))
}

func TestRunSkipsWhenNothingDerivable(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "synthetic", "cafecafecafe.json")
	writeWorkflow(t, path, `{"name":"cafecafecafe","nodes":[{"type":"n8n-nodes-base.noOp"}]}`)

	stats, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.FileExists(t, path)
}

func TestRunCountsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeWorkflow(t, filepath.Join(root, "synthetic", "abcdefabcdefabcd.json"), `{broken`)
	writeWorkflow(t, filepath.Join(root, "synthetic", "0123456789abcdef.json"),
		`{"nodes":[{"type":"n8n-nodes-base.telegram"}]}`)

	stats, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Renamed)
}

func TestRunCapsIntegrationParts(t *testing.T) {
	root := t.TempDir()
	writeWorkflow(t, filepath.Join(root, "synthetic", "feedfeedfeedfeed.json"),
		`{"nodes":[
			{"type":"n8n-nodes-base.slack"},
			{"type":"n8n-nodes-base.hubspot"},
			{"type":"n8n-nodes-base.airtable"},
			{"type":"n8n-nodes-base.gmail"},
			{"type":"n8n-nodes-base.telegram"}
		]}`)

	_, err := Run(Options{WorkflowsRoot: root})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "synthetic", "slack_hubspot_airtable_gmail.json"))
}

func TestDeriveNameDeduplicatesSuffixes(t *testing.T) {
	def := &workflow.Definition{Nodes: []workflow.Node{
		{Type: "n8n-nodes-base.slack"},
		{Type: "n8n-nodes-base.slack"},
		{Type: "n8n-nodes-base.gmail"},
	}}
	assert.Equal(t, "slack_gmail", deriveName(def, "ffffffffffff"))
}

func TestRunMissingRootFatal(t *testing.T) {
	_, err := Run(Options{WorkflowsRoot: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
}
