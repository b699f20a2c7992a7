package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - workflows + workflow_integrations tables
const currentSchemaVersion = 1

// Catalog is an SQLite index over the merged stream: one row per record
// plus one row per (record, integration) pair, so per-category and
// per-integration questions become plain SQL.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens the catalog database at the given path.
//
// The database is configured with WAL mode, NORMAL synchronous mode, a
// 5-second busy timeout, and foreign key enforcement. The connection
// pool is capped at a single connection; SQLite allows one writer at a
// time and the index is rebuilt by a single sequential pass anyway.
//
// Idempotent: safe to call against an existing catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect catalog: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Reset drops all indexed rows so a rebuild starts from a clean slate.
func (c *Catalog) Reset(ctx context.Context) error {
	for _, stmt := range []string{
		"DELETE FROM workflow_integrations",
		"DELETE FROM workflows",
	} {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset catalog: %w", err)
		}
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
