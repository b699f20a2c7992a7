package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chainDefinition(names ...string) *Definition {
	def := &Definition{Connections: map[string]Connection{}}
	for _, n := range names {
		def.Nodes = append(def.Nodes, Node{Name: n, Type: "n8n-nodes-base.set"})
	}
	for i := 0; i+1 < len(names); i++ {
		def.Connections[names[i]] = Connection{
			Main: [][]ConnectionTarget{{{Node: names[i+1]}}},
		}
	}
	return def
}

func TestConnectedNodes(t *testing.T) {
	def := chainDefinition("a", "b", "c")
	connected := ConnectedNodes(def)
	assert.Len(t, connected, 3)
	assert.True(t, connected["a"])
	assert.True(t, connected["c"])
}

func TestHasValidSkeleton(t *testing.T) {
	t.Run("fully connected chain", func(t *testing.T) {
		assert.True(t, HasValidSkeleton(chainDefinition("a", "b", "c"), 0.5))
	})

	t.Run("no connections", func(t *testing.T) {
		def := &Definition{Nodes: []Node{{Name: "a"}, {Name: "b"}}}
		assert.False(t, HasValidSkeleton(def, 0.5))
	})

	t.Run("mostly orphans", func(t *testing.T) {
		def := chainDefinition("a", "b")
		for _, n := range []string{"c", "d", "e", "f"} {
			def.Nodes = append(def.Nodes, Node{Name: n})
		}
		// 2 of 6 connected: passes 0.3, fails 0.5.
		assert.True(t, HasValidSkeleton(def, 0.3))
		assert.False(t, HasValidSkeleton(def, 0.5))
	})

	t.Run("empty workflow", func(t *testing.T) {
		assert.False(t, HasValidSkeleton(&Definition{}, 0.5))
	})
}

func TestHasTrigger(t *testing.T) {
	withTrigger := &Definition{Nodes: []Node{
		{Type: "n8n-nodes-base.scheduleTrigger"},
		{Type: "n8n-nodes-base.slack"},
	}}
	assert.True(t, HasTrigger(withTrigger))

	without := &Definition{Nodes: []Node{{Type: "n8n-nodes-base.slack"}}}
	assert.False(t, HasTrigger(without))
}

func TestConnectionFanOut(t *testing.T) {
	def := chainDefinition("a", "b", "c")
	assert.Equal(t, 2, ConnectionFanOut(def))
	assert.Equal(t, 0, ConnectionFanOut(&Definition{}))
}
