package catalog

import (
	"context"
	"fmt"
)

// Count returns the number of indexed records.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows").Scan(&n); err != nil {
		return 0, fmt.Errorf("count workflows: %w", err)
	}
	return n, nil
}

// Bucket is one (label, count) aggregation row.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCounts aggregates indexed records per destination category,
// largest first; ties break on category name for deterministic output.
func (c *Catalog) CategoryCounts(ctx context.Context) ([]Bucket, error) {
	return c.buckets(ctx, `
		SELECT category, COUNT(*) AS n
		FROM workflows
		GROUP BY category
		ORDER BY n DESC, category ASC
	`)
}

// SourceCounts aggregates per meta.source; records without one fall into
// the empty label.
func (c *Catalog) SourceCounts(ctx context.Context) ([]Bucket, error) {
	return c.buckets(ctx, `
		SELECT source, COUNT(*) AS n
		FROM workflows
		GROUP BY source
		ORDER BY n DESC, source ASC
	`)
}

// TopIntegrations returns the most-used integrations across the indexed
// stream, capped at limit.
func (c *Catalog) TopIntegrations(ctx context.Context, limit int) ([]Bucket, error) {
	return c.buckets(ctx, `
		SELECT integration, COUNT(*) AS n
		FROM workflow_integrations
		GROUP BY integration
		ORDER BY n DESC, integration ASC
		LIMIT ?
	`, limit)
}

func (c *Catalog) buckets(ctx context.Context, query string, args ...any) ([]Bucket, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buckets: %w", err)
	}
	return out, nil
}
