package quality

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// richDefinition builds a workflow that clears every validation gate:
// a triggered 6-node chain, fully connected, with distinct types.
func richDefinition() *workflow.Definition {
	names := []string{"t", "a", "b", "c", "d", "e"}
	types := []string{
		"n8n-nodes-base.scheduleTrigger",
		"n8n-nodes-base.httpRequest",
		"n8n-nodes-base.postgres",
		"n8n-nodes-base.slack",
		"n8n-nodes-base.gmail",
		"n8n-nodes-base.airtable",
	}
	def := &workflow.Definition{
		Name:        "Rich",
		Description: "does many things",
		Connections: map[string]workflow.Connection{},
	}
	for i, n := range names {
		def.Nodes = append(def.Nodes, workflow.Node{Name: n, Type: types[i]})
	}
	for i := 0; i+1 < len(names); i++ {
		def.Connections[names[i]] = workflow.Connection{
			Main: [][]workflow.ConnectionTarget{{{Node: names[i+1]}}},
		}
	}
	return def
}

func TestValidate(t *testing.T) {
	t.Run("rich workflow is valid", func(t *testing.T) {
		assert.Equal(t, "", Validate(richDefinition()))
	})

	t.Run("too few nodes", func(t *testing.T) {
		def := &workflow.Definition{Nodes: []workflow.Node{{Name: "a"}, {Name: "b"}}}
		assert.Equal(t, ReasonTooFewNodes, Validate(def))
	})

	t.Run("no connections", func(t *testing.T) {
		def := richDefinition()
		def.Connections = map[string]workflow.Connection{}
		assert.Equal(t, ReasonNoConnections, Validate(def))
	})

	t.Run("orphan nodes", func(t *testing.T) {
		def := richDefinition()
		for i := 0; i < 10; i++ {
			def.Nodes = append(def.Nodes, workflow.Node{Name: "orphan", Type: "n8n-nodes-base.set"})
		}
		assert.Equal(t, ReasonOrphanNodes, Validate(def))
	})

	t.Run("no trigger", func(t *testing.T) {
		def := richDefinition()
		def.Nodes[0].Type = "n8n-nodes-base.manual"
		assert.Equal(t, ReasonNoTrigger, Validate(def))
	})
}

func TestScore(t *testing.T) {
	// 50 base + 15 diversity (6 types) + 10 fan-out (5*2) + 5 name
	// + 5 description + 10 size band = 95.
	assert.Equal(t, 95, Score(richDefinition()))

	empty := &workflow.Definition{}
	assert.Equal(t, 50, Score(empty))
}

func TestScoreCapped(t *testing.T) {
	def := richDefinition()
	for i := 0; i < 30; i++ {
		def.Connections["t"] = workflow.Connection{
			Main: [][]workflow.ConnectionTarget{{{Node: "a"}}, {{Node: "b"}}, {{Node: "c"}},
				{{Node: "d"}}, {{Node: "e"}}, {{Node: "a"}}, {{Node: "b"}}, {{Node: "c"}}},
		}
	}
	assert.LessOrEqual(t, Score(def), 100)
}

func TestInstruction(t *testing.T) {
	def := richDefinition()
	def.Meta = map[string]any{"semanticLabel": "ops"}
	got := Instruction(def, "workflows/demo/rich.json")
	assert.Equal(t,
		"Create an n8n workflow for: Rich (Category: ops) using scheduleTrigger, httpRequest, postgres, slack, gmail",
		got)
}

func TestInstructionFallsBackToStem(t *testing.T) {
	def := &workflow.Definition{}
	got := Instruction(def, "workflows/demo/mystery.json")
	assert.Equal(t, "Create an n8n workflow for: mystery (Category: automation)", got)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "workflows")

	rich, err := json.Marshal(richDefinition())
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "demo", "rich.json"), string(rich))
	writeFile(t, filepath.Join(root, "demo", "tiny.json"), `{"name":"tiny","nodes":[{"type":"a"}]}`)
	writeFile(t, filepath.Join(root, "demo", "broken.json"), `{nope`)

	out := filepath.Join(dir, "rag_dataset")
	stats, err := Run(Options{WorkflowsRoot: root, OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, stats.Reasons[ReasonTooFewNodes])
	assert.Equal(t, 1, stats.Reasons[ReasonParseError])

	lines := readLines(t, filepath.Join(out, "training_data.jsonl"))
	require.Len(t, lines, 1)
	var example TrainingExample
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &example))
	assert.Contains(t, example.Instruction, "Rich")
	assert.Equal(t, 95, example.Score)

	// The raw workflow round-trips through the output line.
	var entry struct {
		Score    int             `json:"score"`
		Workflow json.RawMessage `json:"workflow"`
	}
	wfLines := readLines(t, filepath.Join(out, "high_quality_workflows.jsonl"))
	require.Len(t, wfLines, 1)
	require.NoError(t, json.Unmarshal([]byte(wfLines[0]), &entry))
	assert.Equal(t, 95, entry.Score)
}

func TestRunMissingRootFatal(t *testing.T) {
	_, err := Run(Options{
		WorkflowsRoot: filepath.Join(t.TempDir(), "nope"),
		OutputDir:     t.TempDir(),
	})
	require.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}
