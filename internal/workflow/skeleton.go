package workflow

import "strings"

// ConnectedNodes returns the set of node names that participate in at
// least one "main" connection, as either source or target.
func ConnectedNodes(d *Definition) map[string]bool {
	connected := make(map[string]bool)
	for source, conn := range d.Connections {
		connected[source] = true
		for _, outputs := range conn.Main {
			for _, target := range outputs {
				if target.Node != "" {
					connected[target.Node] = true
				}
			}
		}
	}
	return connected
}

// ConnectionFanOut counts output ports across all "main" connections.
// Used by the quality and archetype scoring passes.
func ConnectionFanOut(d *Definition) int {
	total := 0
	for _, conn := range d.Connections {
		total += len(conn.Main)
	}
	return total
}

// HasTrigger reports whether any node type mentions "trigger",
// case-insensitively.
func HasTrigger(d *Definition) bool {
	for _, n := range d.Nodes {
		if strings.Contains(strings.ToLower(n.Type), "trigger") {
			return true
		}
	}
	return false
}

// HasValidSkeleton reports whether the workflow's connection graph covers
// at least ratio of its nodes. Workflows with no nodes or no connections
// never qualify.
func HasValidSkeleton(d *Definition, ratio float64) bool {
	if len(d.Nodes) == 0 || len(d.Connections) == 0 {
		return false
	}
	connected := ConnectedNodes(d)
	return float64(len(connected)) >= float64(len(d.Nodes))*ratio
}
