package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NodePrefix is the vendor prefix carried by built-in node types.
// Integration identifiers are the suffix after this prefix.
const NodePrefix = "n8n-nodes-base."

// Record is one workflow in the merged line-delimited stream.
//
// Content carries the original workflow definition verbatim; the pipeline
// never rewrites it, only re-serializes it. NodeCount and Integrations are
// snapshots taken at consolidation time and are not recomputed downstream.
type Record struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	NodeCount    int             `json:"node_count"`
	Integrations []string        `json:"integrations"`
	Category     string          `json:"category,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
	Meta         map[string]any  `json:"meta,omitempty"`
}

// SourceRepository marks records consolidated from the on-disk tree.
// Records arriving via the external stream carry SourceExternal instead.
const (
	SourceRepository = "repository"
	SourceExternal   = "external_community"
)

// Source returns meta.source, or "" when absent.
func (r Record) Source() string {
	s, _ := r.Meta["source"].(string)
	return s
}

// Generated reports whether meta.generated is true.
func (r Record) Generated() bool {
	g, _ := r.Meta["generated"].(bool)
	return g
}

// Archetype returns meta.archetype, or "" when absent.
func (r Record) Archetype() string {
	a, _ := r.Meta["archetype"].(string)
	return a
}

// Definition is the subset of a workflow definition the pipeline reads.
// Everything else in the file is opaque and preserved through Record.Content.
type Definition struct {
	ID          FlexString            `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Nodes       []Node                `json:"nodes"`
	Connections map[string]Connection `json:"connections"`
	Meta        map[string]any        `json:"meta"`
}

// Node is one typed step in a workflow.
type Node struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

// Connection holds a node's outgoing edges. Only the "main" output lane is
// read; each inner slice is the fan-out of one output port.
type Connection struct {
	Main [][]ConnectionTarget `json:"main"`
}

// ConnectionTarget names the node an edge points at.
type ConnectionTarget struct {
	Node string `json:"node"`
}

// FlexString tolerates exporters that emit workflow ids as JSON numbers
// instead of strings.
type FlexString string

// UnmarshalJSON accepts a string, a number, or null.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// ParseDefinition decodes a workflow definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	return &def, nil
}

// SemanticLabel returns meta.semanticLabel, or "" when absent.
func (d *Definition) SemanticLabel() string {
	s, _ := d.Meta["semanticLabel"].(string)
	return s
}

// Complexity returns meta.complexity, defaulting to "intermediate".
func (d *Definition) Complexity() string {
	if c, ok := d.Meta["complexity"].(string); ok && c != "" {
		return c
	}
	return "intermediate"
}

// IsGenerated reports whether meta.generated is true.
func (d *Definition) IsGenerated() bool {
	g, _ := d.Meta["generated"].(bool)
	return g
}

// utilityNodes are structural node types that say nothing about what a
// workflow talks to. They never count as integrations and never
// contribute to a derived filename.
var utilityNodes = map[string]bool{
	"set":        true,
	"code":       true,
	"noOp":       true,
	"stickyNote": true,
	"merge":      true,
	"if":         true,
	"switch":     true,
	"function":   true,
	"start":      true,
}

// IsUtilityNode reports whether a prefix-stripped node type is a
// structural/utility node rather than an external service.
func IsUtilityNode(suffix string) bool {
	return utilityNodes[suffix]
}

// Integrations derives the sorted, de-duplicated integration set from the
// definition's nodes. Types without the vendor prefix contribute nothing,
// and utility nodes do not count as integrations.
func (d *Definition) Integrations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range d.Nodes {
		suffix, ok := strings.CutPrefix(n.Type, NodePrefix)
		if !ok || suffix == "" || IsUtilityNode(suffix) {
			continue
		}
		if !seen[suffix] {
			seen[suffix] = true
			out = append(out, suffix)
		}
	}
	sort.Strings(out)
	return out
}

// TypeSuffix returns the trailing path segment of a node type string,
// e.g. "n8n-nodes-base.slack" -> "slack". Types without a dot are
// returned unchanged.
func TypeSuffix(nodeType string) string {
	if i := strings.LastIndexByte(nodeType, '.'); i >= 0 {
		return nodeType[i+1:]
	}
	return nodeType
}
