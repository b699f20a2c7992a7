// Package consolidate merges the three dataset sources into one
// line-delimited record stream: the on-disk repository tree, the
// synthetic-generated stream, and the external-community stream, appended
// in that order. Derived fields (integration set, node count) are computed
// for on-disk files only; stream lines are already record-shaped and pass
// through verbatim.
package consolidate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Options configure one consolidation run.
type Options struct {
	// WorkflowsRoot is the category-directory tree. Its absence is the one
	// fatal condition for this stage.
	WorkflowsRoot string

	// SyntheticPath and ExternalPath are optional line-delimited sources;
	// a missing file contributes zero records.
	SyntheticPath string
	ExternalPath  string

	// OutputPath is truncated and rewritten on every run.
	OutputPath string

	// Reserved lists top-level directory names to skip while walking the
	// tree; synthetic content arrives via SyntheticPath instead.
	Reserved []string
}

// Stats reports how many records each source contributed.
type Stats struct {
	Repository  int `json:"repository"`
	Synthetic   int `json:"synthetic"`
	External    int `json:"external"`
	ParseErrors int `json:"parse_errors"`
}

// Total is the number of lines written to the merged stream.
func (s Stats) Total() int {
	return s.Repository + s.Synthetic + s.External
}

// MaxLineBytes bounds a single stream line. Workflows are small JSON
// documents; anything beyond this is corrupt input.
const MaxLineBytes = 16 << 20

// Run merges all sources into Options.OutputPath.
//
// Parse failures on individual files or lines are counted and skipped,
// never fatal. Output line count = successfully parsed on-disk files +
// non-blank synthetic lines + non-blank external lines. Given identical
// inputs, reruns produce identical output.
func Run(opts Options) (Stats, error) {
	var stats Stats

	if _, err := os.Stat(opts.WorkflowsRoot); err != nil {
		return stats, fmt.Errorf("workflows root unavailable: %w", err)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("create output directory: %w", err)
		}
	}
	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return stats, fmt.Errorf("create merged stream: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	categories, err := workflow.Subdirs(opts.WorkflowsRoot)
	if err != nil {
		return stats, fmt.Errorf("list categories: %w", err)
	}

	for _, category := range categories {
		if slices.Contains(opts.Reserved, category) {
			slog.Debug("skipping reserved directory", "category", category)
			continue
		}
		count, errs, err := consolidateCategory(w, opts.WorkflowsRoot, category)
		if err != nil {
			return stats, err
		}
		stats.Repository += count
		stats.ParseErrors += errs
		slog.Info("category consolidated", "category", category, "records", count, "parse_errors", errs)
	}

	for _, src := range []struct {
		path  string
		label string
		count *int
	}{
		{opts.SyntheticPath, "synthetic", &stats.Synthetic},
		{opts.ExternalPath, "external", &stats.External},
	} {
		n, err := appendStream(w, src.path)
		if err != nil {
			return stats, fmt.Errorf("append %s stream: %w", src.label, err)
		}
		*src.count = n
		slog.Info("stream appended", "source", src.label, "records", n)
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush merged stream: %w", err)
	}
	return stats, nil
}

// consolidateCategory walks one category directory and appends a record
// line per successfully parsed workflow file, in discovery order.
func consolidateCategory(w *bufio.Writer, root, category string) (count, parseErrors int, err error) {
	files, err := workflow.WalkFiles(filepath.Join(root, category), ".json")
	if err != nil {
		return 0, 0, fmt.Errorf("walk category %s: %w", category, err)
	}

	for _, path := range files {
		rec, err := recordFromFile(path, category)
		if err != nil {
			parseErrors++
			slog.Debug("skipping unparseable workflow", "path", path, "error", err)
			continue
		}
		line, err := json.Marshal(rec)
		if err != nil {
			parseErrors++
			continue
		}
		w.Write(line)
		w.WriteByte('\n')
		count++
	}
	return count, parseErrors, nil
}

// recordFromFile builds a self-contained record from one workflow file.
// ID and name fall back to the filename stem; meta.source is set to
// "repository" only when the file carries no meta of its own.
func recordFromFile(path, category string) (workflow.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.Record{}, err
	}
	def, err := workflow.ParseDefinition(data)
	if err != nil {
		return workflow.Record{}, err
	}

	// Content must occupy a single stream line regardless of how the
	// source file was formatted.
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return workflow.Record{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	rec := workflow.Record{
		ID:           string(def.ID),
		Name:         def.Name,
		NodeCount:    len(def.Nodes),
		Integrations: def.Integrations(),
		Category:     category,
		Content:      json.RawMessage(compact.Bytes()),
		Meta:         def.Meta,
	}
	if rec.ID == "" {
		rec.ID = stem
	}
	if rec.Name == "" {
		rec.Name = stem
	}
	if rec.Meta == nil {
		rec.Meta = map[string]any{"source": workflow.SourceRepository}
	}
	// Streams carry [] rather than null for workflows with no integrations.
	if rec.Integrations == nil {
		rec.Integrations = []string{}
	}
	return rec, nil
}

// appendStream copies every non-blank line of a line-delimited source
// verbatim. A missing file is a zero-record source, not an error.
func appendStream(w *bufio.Writer, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		w.Write(line)
		w.WriteByte('\n')
		count++
	}
	if err := sc.Err(); err != nil {
		return count, err
	}
	return count, nil
}
