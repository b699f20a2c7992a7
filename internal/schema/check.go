package schema

import (
	"bufio"
	"fmt"
	"os"

	"github.com/flowatlas/atlasctl/internal/consolidate"
	"github.com/flowatlas/atlasctl/internal/workflow"
)

// Stats summarizes one validation pass.
type Stats struct {
	Checked int `json:"checked"`
	Invalid int `json:"invalid"`
}

// Issue is one schema violation, located by file path or stream line.
type Issue struct {
	Path string
	Line int
	Err  error
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", i.Path, i.Line, i.Err)
	}
	return fmt.Sprintf("%s: %v", i.Path, i.Err)
}

// CheckTree validates every .json file under root against the workflow
// schema. Violations are collected, not fatal; a missing root is a
// zero-file tree.
func (v *Validator) CheckTree(root string) (Stats, []Issue, error) {
	var stats Stats
	var issues []Issue

	paths, err := workflow.WalkFiles(root, ".json")
	if err != nil {
		return stats, nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			stats.Invalid++
			issues = append(issues, Issue{Path: path, Err: err})
			continue
		}
		stats.Checked++
		if err := v.ValidateWorkflow(data); err != nil {
			stats.Invalid++
			issues = append(issues, Issue{Path: path, Err: err})
		}
	}
	return stats, issues, nil
}

// CheckStream validates every line of the merged stream against the
// record schema. Issues carry physical line numbers, blank lines
// included. A missing stream is an error: validating nothing is not a
// pass.
func (v *Validator) CheckStream(path string) (Stats, []Issue, error) {
	var stats Stats
	var issues []Issue

	f, err := os.Open(path)
	if err != nil {
		return stats, nil, fmt.Errorf("open stream: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), consolidate.MaxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		stats.Checked++
		if err := v.ValidateRecord(raw); err != nil {
			stats.Invalid++
			issues = append(issues, Issue{Path: path, Line: line, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, issues, fmt.Errorf("read stream: %w", err)
	}
	return stats, issues, nil
}
