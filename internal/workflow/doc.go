// Package workflow defines the record model shared by every pipeline stage.
//
// A Record is the unit of storage and transfer: one line of the merged
// stream, self-contained enough for the Splitter to reconstruct its
// destination file with no external state. Records are created from a
// source file or stream line, serialized once, and never mutated after
// creation; downstream stages re-derive from fresh lines rather than
// sharing state.
//
// The package also holds the pure helpers the stages agree on: the tree
// walker, the categorizer, filename sanitization, integration derivation,
// and connection-skeleton checks.
package workflow
