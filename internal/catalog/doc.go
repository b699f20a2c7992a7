// Package catalog provides an SQLite index over the merged workflow stream.
//
// The index holds one row per stream record plus one row per
// (record, integration) pair:
//   - workflows: line position, identity, destination category, source
//   - workflow_integrations: the integrations each record uses
//
// The 1-based line position is the primary key, so rebuilding the index
// from the same stream replaces rows in place instead of accumulating
// duplicates.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: integration rows follow their workflow row
//
// All aggregate queries order by count descending then label ascending
// so repeated runs over the same stream render identically.
package catalog
