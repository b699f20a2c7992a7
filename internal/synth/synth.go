// Package synth generates synthetic workflows by node-swapping
// archetypes: each variation replaces one to three nodes with compatible
// services while preserving the connection skeleton. Generation is
// seeded, so a fixed seed reproduces the same variations.
package synth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Generation defaults.
const (
	DefaultVariations = 1000
	DefaultSeed       = 42
	maxSwapsPerCopy   = 3
)

// Options configure one generation run.
type Options struct {
	ArchetypesDir string
	OutputDir     string
	// Variations per archetype; defaults to DefaultVariations when zero.
	Variations int
	// Seed for the swap RNG; defaults to DefaultSeed when zero.
	Seed int64
	// IDs supplies ids for generated workflows; defaults to UUIDv7.
	IDs IDGenerator
}

// Stats summarize a generation run.
type Stats struct {
	Archetypes  int `json:"archetypes"`
	Generated   int `json:"generated"`
	NoSwappable int `json:"no_swappable"`
	Errors      int `json:"errors"`
}

// Run loads every archetype under ArchetypesDir/<category>/ and writes
// variations to OutputDir/<category>/<base>_var<n>.json.
func Run(opts Options) (Stats, error) {
	var stats Stats
	variations := opts.Variations
	if variations == 0 {
		variations = DefaultVariations
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	rng := rand.New(rand.NewSource(seed))

	categories, err := workflow.Subdirs(opts.ArchetypesDir)
	if err != nil {
		return stats, fmt.Errorf("archetypes directory unavailable: %w", err)
	}

	for _, category := range categories {
		files, err := workflow.WalkFiles(filepath.Join(opts.ArchetypesDir, category), ".json")
		if err != nil {
			return stats, fmt.Errorf("walk archetypes %s: %w", category, err)
		}
		for _, path := range files {
			generated, err := generateFromArchetype(opts.OutputDir, category, path, variations, rng, ids)
			if err != nil {
				stats.Errors++
				slog.Warn("archetype skipped", "path", path, "error", err)
				continue
			}
			stats.Archetypes++
			if generated == 0 {
				stats.NoSwappable++
				slog.Info("no swappable nodes", "archetype", filepath.Base(path))
				continue
			}
			stats.Generated += generated
			slog.Info("variations generated", "archetype", filepath.Base(path), "count", generated)
		}
	}
	return stats, nil
}

type swapSlot struct {
	index      int
	candidates []string
}

func generateFromArchetype(outputRoot, category, path string, count int, rng *rand.Rand, ids IDGenerator) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var archetype map[string]any
	if err := json.Unmarshal(data, &archetype); err != nil {
		return 0, err
	}

	nodes, _ := archetype["nodes"].([]any)
	var swappable []swapSlot
	for i, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ty, _ := node["type"].(string)
		if candidates := SwapCandidates(ty); len(candidates) > 0 {
			swappable = append(swappable, swapSlot{index: i, candidates: candidates})
		}
	}
	if len(swappable) == 0 {
		return 0, nil
	}

	dir := filepath.Join(outputRoot, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	origName, _ := archetype["name"].(string)
	if origName == "" {
		origName = "Workflow"
	}
	base := strings.TrimSuffix(filepath.Base(path), ".json")

	written := 0
	for v := 1; v <= count; v++ {
		// Unmarshal a fresh copy per variation; mutating a shared map
		// would bleed swaps across variations.
		var wf map[string]any
		if err := json.Unmarshal(data, &wf); err != nil {
			return written, err
		}
		wfNodes, _ := wf["nodes"].([]any)

		numSwaps := 1 + rng.Intn(min(maxSwapsPerCopy, len(swappable)))
		for _, slotIdx := range rng.Perm(len(swappable))[:numSwaps] {
			slot := swappable[slotIdx]
			swapTo := slot.candidates[rng.Intn(len(slot.candidates))]
			if node, ok := wfNodes[slot.index].(map[string]any); ok {
				swapNode(node, swapTo)
			}
		}

		wf["id"] = ids.NewID()
		wf["name"] = fmt.Sprintf("%s_v%d", origName, v)
		meta, _ := wf["meta"].(map[string]any)
		if meta == nil {
			meta = make(map[string]any)
		}
		meta["generated"] = true
		meta["sourceArchetype"] = origName
		wf["meta"] = meta

		out, err := json.MarshalIndent(wf, "", "  ")
		if err != nil {
			return written, err
		}
		name := fmt.Sprintf("%s_var%d.json", base, v)
		if err := os.WriteFile(filepath.Join(dir, name), append(out, '\n'), 0o644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// swapNode rewrites a node's type (and name) to the replacement service,
// preserving trigger status: swapping a trigger for a non-trigger
// service appends the Trigger suffix.
func swapNode(node map[string]any, swapTo string) {
	oldType, _ := node["type"].(string)
	isTrigger := strings.Contains(strings.ToLower(oldType), "trigger")

	newType := "n8n-nodes-base." + swapTo
	if isTrigger && !strings.Contains(strings.ToLower(swapTo), "trigger") {
		newType = "n8n-nodes-base." + swapTo + "Trigger"
	}
	node["type"] = newType

	if oldName, ok := node["name"].(string); ok && oldName != "" {
		node["name"] = strings.ReplaceAll(oldName, workflow.TypeSuffix(oldType), swapTo)
	}
}
