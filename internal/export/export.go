// Package export prepares the training-ready dataset: each structurally
// valid workflow becomes one instruction/output line of train.jsonl, and
// a metadata.json describes the run. This is the last stage before the
// dataset leaves the repository.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Dataset identity written into metadata.json.
const (
	DatasetName    = "n8n-workflows-atlas"
	DatasetVersion = "2.0"
)

// ConnectedRatio is the skeleton bar an exported workflow must clear.
const ConnectedRatio = 0.5

// DefaultFolders are the category directories exported by default, in
// priority order.
var DefaultFolders = []string{"synthetic_v2", "synthetic", "external", "ai-automation-lab", "initial_megapack"}

// Options configure one export run.
type Options struct {
	WorkflowsRoot string
	OutputDir     string
	// Folders defaults to DefaultFolders when empty.
	Folders []string
	// Now is injectable for deterministic metadata; defaults to time.Now.
	Now func() time.Time
}

// Stats summarize an export run.
type Stats struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Example is one line of train.jsonl.
type Example struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Category    string `json:"category"`
	Complexity  string `json:"complexity"`
	NodeCount   int    `json:"node_count"`
	Source      string `json:"source"`
	IsGenerated bool   `json:"is_generated"`
}

// Run walks the configured folders and writes train.jsonl plus
// metadata.json into OutputDir.
func Run(opts Options) (Stats, error) {
	var stats Stats
	folders := opts.Folders
	if len(folders) == 0 {
		folders = DefaultFolders
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if _, err := os.Stat(opts.WorkflowsRoot); err != nil {
		return stats, fmt.Errorf("workflows root unavailable: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	var files []string
	for _, folder := range folders {
		found, err := workflow.WalkFiles(filepath.Join(opts.WorkflowsRoot, folder), ".json")
		if err != nil {
			return stats, fmt.Errorf("walk %s: %w", folder, err)
		}
		slog.Info("folder scanned", "folder", folder, "files", len(found))
		files = append(files, found...)
	}

	train, err := os.Create(filepath.Join(opts.OutputDir, "train.jsonl"))
	if err != nil {
		return stats, err
	}
	defer train.Close()
	enc := json.NewEncoder(train)

	categories := make(map[string]int)
	for _, path := range files {
		example, ok := exampleFromFile(path)
		if !ok {
			stats.Invalid++
			continue
		}
		if err := enc.Encode(example); err != nil {
			return stats, err
		}
		stats.Valid++
		categories[example.Category]++
	}

	meta := buildMetadata(stats, categories, now())
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(filepath.Join(opts.OutputDir, "metadata.json"), append(metaJSON, '\n'), 0o644); err != nil {
		return stats, err
	}
	return stats, nil
}

func exampleFromFile(path string) (Example, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Example{}, false
	}
	def, err := workflow.ParseDefinition(data)
	if err != nil {
		return Example{}, false
	}
	if !workflow.HasValidSkeleton(def, ConnectedRatio) {
		return Example{}, false
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return Example{}, false
	}

	category := def.SemanticLabel()
	if category == "" {
		category = "general"
	}
	return Example{
		Instruction: Instruction(def),
		Output:      compact.String(),
		Category:    category,
		Complexity:  def.Complexity(),
		NodeCount:   len(def.Nodes),
		Source:      filepath.Base(filepath.Dir(path)),
		IsGenerated: def.IsGenerated(),
	}, true
}

// Instruction builds the natural-language prompt: the workflow name,
// then its semantic category, then the first six distinct node types.
func Instruction(def *workflow.Definition) string {
	name := def.Name
	if name == "" {
		name = "Workflow"
	}
	parts := []string{fmt.Sprintf("Create an n8n workflow to: %s", name)}
	if label := def.SemanticLabel(); label != "" {
		parts = append(parts, fmt.Sprintf("Category: %s", label))
	}
	if types := nodeTypes(def, 6); len(types) > 0 {
		parts = append(parts, fmt.Sprintf("Using: %s", strings.Join(types, ", ")))
	}
	return strings.Join(parts, " | ")
}

// nodeTypes lists distinct prefix-stripped node types in encounter
// order, capped at limit.
func nodeTypes(def *workflow.Definition, limit int) []string {
	seen := make(map[string]bool)
	var types []string
	for _, n := range def.Nodes {
		t := strings.TrimPrefix(n.Type, workflow.NodePrefix)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
		if len(types) == limit {
			break
		}
	}
	return types
}

// Metadata describes one export run.
type Metadata struct {
	DatasetName    string         `json:"dataset_name"`
	Version        string         `json:"version"`
	CreatedAt      string         `json:"created_at"`
	TotalExamples  int            `json:"total_examples"`
	InvalidSkipped int            `json:"invalid_skipped"`
	Categories     CategoryCounts `json:"categories"`
	Description    string         `json:"description"`
	License        string         `json:"license"`
}

func buildMetadata(stats Stats, categories map[string]int, at time.Time) Metadata {
	return Metadata{
		DatasetName:    DatasetName,
		Version:        DatasetVersion,
		CreatedAt:      at.Format(time.RFC3339),
		TotalExamples:  stats.Valid,
		InvalidSkipped: stats.Invalid,
		Categories:     sortedCounts(categories),
		Description:    "High-quality n8n workflow dataset for training workflow generators",
		License:        "Apache-2.0",
	}
}

// CategoryCounts marshals as a JSON object whose keys are ordered by
// count descending, matching how the histogram reads best.
type CategoryCounts []CategoryCount

// CategoryCount is one histogram entry.
type CategoryCount struct {
	Name  string
	Count int
}

func sortedCounts(m map[string]int) CategoryCounts {
	out := make(CategoryCounts, 0, len(m))
	for name, count := range m {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MarshalJSON renders the histogram as an ordered JSON object.
func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", entry.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
