// Package quality filters the workflow tree down to a high-quality
// subset suitable for retrieval and fine-tuning. A workflow passes when
// its connection skeleton is structurally sound and its quality score
// clears the threshold; survivors are exported as instruction/output
// pairs plus the raw workflows, both line-delimited.
package quality

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Structural thresholds for a valid workflow.
const (
	MinNodes       = 3
	MinConnections = 2
	ConnectedRatio = 0.6
)

// DefaultMinScore is the score a workflow must reach to be kept.
const DefaultMinScore = 60

// Rejection reasons, reported per bucket in the final stats.
const (
	ReasonTooFewNodes   = "too_few_nodes"
	ReasonNoConnections = "no_connections"
	ReasonOrphanNodes   = "orphan_nodes"
	ReasonNoTrigger     = "no_trigger"
	ReasonLowScore      = "low_score"
	ReasonParseError    = "parse_error"
)

// Options configure one filter run.
type Options struct {
	WorkflowsRoot string
	OutputDir     string
	// MinScore defaults to DefaultMinScore when zero.
	MinScore int
}

// Stats summarize a filter run, bucketed by rejection reason.
type Stats struct {
	Scanned int            `json:"scanned"`
	Kept    int            `json:"kept"`
	Reasons map[string]int `json:"reasons"`
}

// Validate checks a workflow's structure. The empty string means valid;
// otherwise the rejection reason is returned.
func Validate(def *workflow.Definition) string {
	if len(def.Nodes) < MinNodes {
		return ReasonTooFewNodes
	}
	if len(def.Connections) < MinConnections {
		return ReasonNoConnections
	}
	if !workflow.HasValidSkeleton(def, ConnectedRatio) {
		return ReasonOrphanNodes
	}
	if !workflow.HasTrigger(def) {
		return ReasonNoTrigger
	}
	return ""
}

// Score rates a workflow 0-100: a base of 50, plus node-type diversity,
// connection fan-out, self-description, and a bonus for moderate size.
func Score(def *workflow.Definition) int {
	score := 50

	types := make(map[string]bool)
	for _, n := range def.Nodes {
		types[n.Type] = true
	}
	score += min(len(types)*3, 15)
	score += min(workflow.ConnectionFanOut(def)*2, 15)

	if def.Name != "" {
		score += 5
	}
	if def.Description != "" {
		score += 5
	}
	if n := len(def.Nodes); n >= 5 && n <= 12 {
		score += 10
	}
	return min(score, 100)
}

// TrainingExample is one line of training_data.jsonl.
type TrainingExample struct {
	Instruction string `json:"instruction"`
	Output      string `json:"output"`
	Category    string `json:"category"`
	Score       int    `json:"score"`
}

type keptWorkflow struct {
	score int
	path  string
	raw   json.RawMessage
	def   *workflow.Definition
}

// Run scans the whole tree, keeps workflows scoring at least
// Options.MinScore, and writes training_data.jsonl and
// high_quality_workflows.jsonl (score-descending) into OutputDir.
func Run(opts Options) (Stats, error) {
	stats := Stats{Reasons: make(map[string]int)}
	minScore := opts.MinScore
	if minScore == 0 {
		minScore = DefaultMinScore
	}

	if _, err := os.Stat(opts.WorkflowsRoot); err != nil {
		return stats, fmt.Errorf("workflows root unavailable: %w", err)
	}
	files, err := workflow.WalkFiles(opts.WorkflowsRoot, ".json")
	if err != nil {
		return stats, fmt.Errorf("walk workflows: %w", err)
	}
	slog.Info("scanning workflows", "files", len(files))

	var kept []keptWorkflow
	for _, path := range files {
		stats.Scanned++
		data, err := os.ReadFile(path)
		if err != nil {
			stats.Reasons[ReasonParseError]++
			continue
		}
		def, err := workflow.ParseDefinition(data)
		if err != nil {
			stats.Reasons[ReasonParseError]++
			continue
		}
		if reason := Validate(def); reason != "" {
			stats.Reasons[reason]++
			continue
		}
		score := Score(def)
		if score < minScore {
			stats.Reasons[ReasonLowScore]++
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			stats.Reasons[ReasonParseError]++
			continue
		}
		kept = append(kept, keptWorkflow{score: score, path: path, raw: compact.Bytes(), def: def})
		stats.Kept++
	}

	// Highest quality first; path breaks ties so reruns are identical.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].path < kept[j].path
	})

	if err := writeOutputs(opts.OutputDir, kept); err != nil {
		return stats, err
	}
	return stats, nil
}

func writeOutputs(dir string, kept []keptWorkflow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	training, err := os.Create(filepath.Join(dir, "training_data.jsonl"))
	if err != nil {
		return err
	}
	defer training.Close()
	workflows, err := os.Create(filepath.Join(dir, "high_quality_workflows.jsonl"))
	if err != nil {
		return err
	}
	defer workflows.Close()

	trainEnc := json.NewEncoder(training)
	wfEnc := json.NewEncoder(workflows)
	for _, k := range kept {
		example := TrainingExample{
			Instruction: Instruction(k.def, k.path),
			Output:      string(k.raw),
			Category:    categoryLabel(k.def),
			Score:       k.score,
		}
		if err := trainEnc.Encode(example); err != nil {
			return err
		}
		entry := struct {
			Score    int             `json:"score"`
			Path     string          `json:"path"`
			Workflow json.RawMessage `json:"workflow"`
		}{k.score, k.path, k.raw}
		if err := wfEnc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

// Instruction builds the natural-language prompt for a training pair.
func Instruction(def *workflow.Definition, path string) string {
	name := def.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create an n8n workflow for: %s", name)
	fmt.Fprintf(&b, " (Category: %s)", categoryLabel(def))

	var types []string
	for _, n := range def.Nodes {
		if t, ok := strings.CutPrefix(n.Type, workflow.NodePrefix); ok && t != "" {
			types = append(types, t)
		}
		if len(types) == 5 {
			break
		}
	}
	if len(types) > 0 {
		fmt.Fprintf(&b, " using %s", strings.Join(types, ", "))
	}
	return b.String()
}

func categoryLabel(def *workflow.Definition) string {
	if l := def.SemanticLabel(); l != "" {
		return l
	}
	return "automation"
}
