package synth

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator supplies ids for generated workflows.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids, so generated
// workflows sort by creation time when listed.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a hyphenated UUIDv7 string. Panics if generation fails,
// which does not happen in practice.
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests.
// Once the sequence is exhausted it repeats the last id.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator over the given sequence.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return "fixed-id"
	}
	if g.idx >= len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
