// Package split is the inverse of consolidation: it reads the merged
// line-delimited stream and writes each record back out as an individual
// pretty-printed file under its category (and optional archetype
// subfolder) directory.
package split

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flowatlas/atlasctl/internal/consolidate"
	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Options configure one split run.
type Options struct {
	// StreamPath is the merged stream; its absence is fatal.
	StreamPath string
	// OutputRoot is the tree the records are written under.
	OutputRoot string
}

// Stats summarize a split run.
type Stats struct {
	Total      int `json:"total"`
	Repository int `json:"repository"`
	Synthetic  int `json:"synthetic"`
	External   int `json:"external"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Run redistributes every stream record into OutputRoot.
//
// Each record is routed by the categorizer and named after its id
// (fallback name, fallback workflow_<ordinal> where ordinal is 1-based
// among successfully parsed records). Records whose derived names collide
// get numeric suffixes rather than overwriting each other; the collision
// table lives for exactly one run. Parse and filesystem failures are
// counted and skipped, never fatal.
func Run(opts Options) (Stats, error) {
	var stats Stats

	f, err := os.Open(opts.StreamPath)
	if err != nil {
		return stats, fmt.Errorf("open merged stream: %w", err)
	}
	defer f.Close()

	names := workflow.NewNameAllocator()
	ordinal := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), consolidate.MaxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec workflow.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Errors++
			slog.Debug("skipping unparseable stream line", "error", err)
			continue
		}
		ordinal++

		if err := writeRecord(opts.OutputRoot, rec, ordinal, names, &stats); err != nil {
			stats.Errors++
			slog.Warn("failed to write record", "id", rec.ID, "error", err)
			continue
		}
		stats.Total++

		if stats.Total%10000 == 0 {
			slog.Info("split progress", "records", stats.Total)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read merged stream: %w", err)
	}
	return stats, nil
}

func writeRecord(root string, rec workflow.Record, ordinal int, names *workflow.NameAllocator, stats *Stats) error {
	dest := workflow.Categorize(rec)
	dir := filepath.Join(root, dest.Category)
	if dest.Subfolder != "" {
		dir = filepath.Join(dir, workflow.SafeBaseName(dest.Subfolder))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	base := rec.ID
	if base == "" {
		base = rec.Name
	}
	if base == "" {
		base = fmt.Sprintf("workflow_%d", ordinal)
	}
	name, duplicate := names.Claim(workflow.SafeBaseName(base))
	if duplicate {
		stats.Duplicates++
	}

	pretty, err := prettyPayload(rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), pretty, 0o644); err != nil {
		return err
	}

	switch dest.Category {
	case workflow.CategorySynthetic:
		stats.Synthetic++
	case workflow.CategoryExternal:
		stats.External++
	default:
		stats.Repository++
	}
	return nil
}

// prettyPayload renders the record's content, or the whole record when no
// content is present, as indented JSON.
func prettyPayload(rec workflow.Record) ([]byte, error) {
	var payload any
	if len(rec.Content) > 0 {
		if err := json.Unmarshal(rec.Content, &payload); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
	} else {
		payload = rec
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
