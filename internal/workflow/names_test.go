package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameAllocator(t *testing.T) {
	a := NewNameAllocator()

	name, dup := a.Claim("slack_sync")
	assert.Equal(t, "slack_sync", name)
	assert.False(t, dup)

	name, dup = a.Claim("slack_sync")
	assert.Equal(t, "slack_sync_1", name)
	assert.True(t, dup)

	name, dup = a.Claim("slack_sync")
	assert.Equal(t, "slack_sync_2", name)
	assert.True(t, dup)

	// Independent base names do not interfere.
	name, dup = a.Claim("other")
	assert.Equal(t, "other", name)
	assert.False(t, dup)
}

func TestNameAllocatorScopedPerInstance(t *testing.T) {
	a := NewNameAllocator()
	a.Claim("x")

	b := NewNameAllocator()
	name, dup := b.Claim("x")
	assert.Equal(t, "x", name)
	assert.False(t, dup)
}
