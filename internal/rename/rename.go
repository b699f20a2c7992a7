// Package rename replaces hash-like workflow filenames with
// human-readable names derived from each workflow's content: the
// archetype, followed by up to four integration names. Files whose names
// already look descriptive are left alone.
package rename

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Options configure one rename pass.
type Options struct {
	// WorkflowsRoot is the category tree.
	WorkflowsRoot string
	// Folders are the category directories to process.
	Folders []string
}

// DefaultFolders are the directories whose files typically carry
// hash-derived names.
var DefaultFolders = []string{workflow.CategorySynthetic, workflow.CategoryExternal}

// Stats summarize a rename pass.
type Stats struct {
	Processed  int `json:"processed"`
	Renamed    int `json:"renamed"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// MaxIntegrationParts caps how many node-type suffixes contribute to a
// derived name.
const MaxIntegrationParts = 4

// maxLoggedErrors bounds per-file error logging so a corrupt folder does
// not flood the log. Errors beyond the cap are still counted.
const maxLoggedErrors = 5

var (
	hexName    = regexp.MustCompile(`^[0-9a-fA-F]{12,}$`)
	numberedName = regexp.MustCompile(`^\d{4}_`)
)

// LooksLikeHash reports whether a filename stem is hash-derived: an
// all-hex string of at least 12 characters, or a 4-digit prefix followed
// by an underscore.
func LooksLikeHash(stem string) bool {
	return hexName.MatchString(stem) || numberedName.MatchString(stem)
}

// Run renames hash-named files across Options.Folders.
//
// The collision table is created here and threaded through every naming
// decision, so duplicate handling is scoped to one pass. Per-file
// failures are counted and logged (first few only) but never abort the
// run.
func Run(opts Options) (Stats, error) {
	var stats Stats

	if _, err := os.Stat(opts.WorkflowsRoot); err != nil {
		return stats, fmt.Errorf("workflows root unavailable: %w", err)
	}
	folders := opts.Folders
	if len(folders) == 0 {
		folders = DefaultFolders
	}

	names := workflow.NewNameAllocator()
	for _, folder := range folders {
		files, err := workflow.WalkFiles(filepath.Join(opts.WorkflowsRoot, folder), ".json")
		if err != nil {
			return stats, fmt.Errorf("walk %s: %w", folder, err)
		}
		slog.Info("renaming folder", "folder", folder, "files", len(files))
		for _, path := range files {
			renameOne(path, names, &stats)
		}
	}
	return stats, nil
}

func renameOne(path string, names *workflow.NameAllocator, stats *Stats) {
	stats.Processed++
	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	if !LooksLikeHash(stem) {
		stats.Skipped++
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		recordError(stats, path, err)
		return
	}
	def, err := workflow.ParseDefinition(data)
	if err != nil {
		recordError(stats, path, err)
		return
	}

	base := workflow.Slug(deriveName(def, stem))
	if base == "" {
		stats.Skipped++
		return
	}

	name, duplicate := names.Claim(base)
	if duplicate {
		stats.Duplicates++
	}

	target := filepath.Join(filepath.Dir(path), name+".json")
	if target == path {
		stats.Skipped++
		return
	}
	if err := os.Rename(path, target); err != nil {
		recordError(stats, path, err)
		return
	}
	stats.Renamed++
}

// deriveName builds the candidate name: archetype first, then up to four
// distinct non-utility node-type suffixes in node-encounter order. When
// nothing was collected, the workflow's own name serves as fallback
// unless it matches the current stem, in which case the file keeps its
// name.
func deriveName(def *workflow.Definition, stem string) string {
	var parts []string
	if a, ok := def.Meta["archetype"].(string); ok && a != "" {
		parts = append(parts, a)
	}

	seen := make(map[string]bool)
	collected := 0
	for _, n := range def.Nodes {
		if collected >= MaxIntegrationParts {
			break
		}
		suffix := workflow.TypeSuffix(n.Type)
		if suffix == "" || workflow.IsUtilityNode(suffix) || seen[suffix] {
			continue
		}
		seen[suffix] = true
		parts = append(parts, suffix)
		collected++
	}

	if len(parts) == 0 {
		if def.Name != "" && def.Name != stem {
			return def.Name
		}
		return ""
	}
	return strings.Join(parts, "_")
}

func recordError(stats *Stats, path string, err error) {
	stats.Errors++
	if stats.Errors <= maxLoggedErrors {
		slog.Warn("rename failed", "path", path, "error", err)
	}
}
