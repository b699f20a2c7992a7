package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flowatlas/atlasctl/internal/workflow"
)

// InsertRecord indexes one stream record at the given 1-based line
// position. Re-inserting the same line replaces the prior row, so
// rebuilds over the same stream are idempotent.
func (c *Catalog) InsertRecord(ctx context.Context, line int, rec workflow.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	defer tx.Rollback()

	if err := insertInTx(ctx, tx, line, rec); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func insertInTx(ctx context.Context, tx *sql.Tx, line int, rec workflow.Record) error {
	dest := workflow.Categorize(rec)

	generated := 0
	if rec.Generated() {
		generated = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO workflows (line, id, name, category, subfolder, source, generated, node_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(line) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			category = excluded.category,
			subfolder = excluded.subfolder,
			source = excluded.source,
			generated = excluded.generated,
			node_count = excluded.node_count
	`, line, rec.ID, rec.Name, dest.Category, dest.Subfolder, rec.Source(), generated, rec.NodeCount)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM workflow_integrations WHERE line = ?", line); err != nil {
		return fmt.Errorf("clear integrations: %w", err)
	}
	for _, integration := range rec.Integrations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_integrations (line, integration)
			VALUES (?, ?)
			ON CONFLICT(line, integration) DO NOTHING
		`, line, integration); err != nil {
			return fmt.Errorf("insert integration: %w", err)
		}
	}
	return nil
}
