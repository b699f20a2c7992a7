// Package archetype selects representative workflows per semantic
// category. Workflows are grouped by their embedded semantic label,
// gated on connection-skeleton validity, scored, and the top few per
// label are written out as generation templates.
package archetype

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Selection defaults.
const (
	DefaultPerCategory = 4
	MinNodes           = 3
	ConnectedRatio     = 0.5
	stemLimit          = 25
)

// Options configure one extraction run.
type Options struct {
	WorkflowsRoot string
	OutputDir     string
	// PerCategory defaults to DefaultPerCategory when zero.
	PerCategory int
}

// Stats summarize an extraction run.
type Stats struct {
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	NoLabel    int `json:"no_label"`
	Categories int `json:"categories"`
	Written    int `json:"written"`
}

// Score rates a workflow's suitability as a template. Compared to the
// quality score this favors moderate node counts and integration
// diversity over self-description.
func Score(def *workflow.Definition) int {
	score := 0

	switch n := len(def.Nodes); {
	case n >= 4 && n <= 10:
		score += 30
	case n > 10 && n <= 20:
		score += 25
	case n > 20:
		score += 15
	}

	score += min(workflow.ConnectionFanOut(def)*5, 30)
	score += min(len(def.Integrations())*5, 25)

	if workflow.HasTrigger(def) {
		score += 15
	}
	return score
}

type candidate struct {
	score int
	path  string
	raw   []byte
}

// Run groups workflows by meta.semanticLabel, keeps the top
// Options.PerCategory per label, and writes each as
// OutputDir/<label>/archetype_<rank>_<stem>.json.
func Run(opts Options) (Stats, error) {
	var stats Stats
	perCategory := opts.PerCategory
	if perCategory == 0 {
		perCategory = DefaultPerCategory
	}

	if _, err := os.Stat(opts.WorkflowsRoot); err != nil {
		return stats, fmt.Errorf("workflows root unavailable: %w", err)
	}
	files, err := workflow.WalkFiles(opts.WorkflowsRoot, ".json")
	if err != nil {
		return stats, fmt.Errorf("walk workflows: %w", err)
	}
	slog.Info("scanning for archetypes", "files", len(files))

	byLabel := make(map[string][]candidate)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			stats.Invalid++
			continue
		}
		def, err := workflow.ParseDefinition(data)
		if err != nil {
			stats.Invalid++
			continue
		}
		label := def.SemanticLabel()
		if label == "" {
			stats.NoLabel++
			continue
		}
		if len(def.Nodes) < MinNodes || !workflow.HasValidSkeleton(def, ConnectedRatio) {
			stats.Invalid++
			continue
		}
		byLabel[label] = append(byLabel[label], candidate{score: Score(def), path: path, raw: data})
		stats.Valid++
	}
	stats.Categories = len(byLabel)

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		candidates := byLabel[label]
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].path < candidates[j].path
		})
		if len(candidates) > perCategory {
			candidates = candidates[:perCategory]
		}

		dir := filepath.Join(opts.OutputDir, workflow.LabelDir(label))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("create %s: %w", dir, err)
		}
		for i, c := range candidates {
			stem := strings.TrimSuffix(filepath.Base(c.path), ".json")
			if len(stem) > stemLimit {
				stem = stem[:stemLimit]
			}
			name := fmt.Sprintf("archetype_%d_%s.json", i+1, stem)
			pretty, err := prettyJSON(c.raw)
			if err != nil {
				stats.Invalid++
				continue
			}
			if err := os.WriteFile(filepath.Join(dir, name), pretty, 0o644); err != nil {
				return stats, fmt.Errorf("write archetype: %w", err)
			}
			stats.Written++
		}
		slog.Info("archetypes selected", "label", label, "candidates", len(byLabel[label]), "kept", len(candidates))
	}
	return stats, nil
}

func prettyJSON(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
