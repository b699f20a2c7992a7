package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/flowatlas/atlasctl/internal/consolidate"
	"github.com/flowatlas/atlasctl/internal/workflow"
)

// BuildStats summarizes a catalog rebuild.
type BuildStats struct {
	Indexed int `json:"indexed"`
	Errors  int `json:"errors"`
}

// BuildFromStream drops any previous index and repopulates the catalog
// from the merged stream at streamPath, one row per line. Lines that do
// not parse as records are counted and skipped.
func (c *Catalog) BuildFromStream(ctx context.Context, streamPath string) (BuildStats, error) {
	var stats BuildStats

	f, err := os.Open(streamPath)
	if err != nil {
		return stats, fmt.Errorf("open stream: %w", err)
	}
	defer f.Close()

	if err := c.Reset(ctx); err != nil {
		return stats, err
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), consolidate.MaxLineBytes)

	line := 0
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		line++

		var rec workflow.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			stats.Errors++
			slog.Debug("skipping unparseable line", "line", line, "error", err)
			continue
		}
		if err := c.InsertRecord(ctx, line, rec); err != nil {
			return stats, fmt.Errorf("index line %d: %w", line, err)
		}
		stats.Indexed++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read stream: %w", err)
	}
	return stats, nil
}
