package workflow

import "strconv"

// NameAllocator resolves filename collisions within one run. The first
// claim of a base name is returned as-is; later claims get a numeric
// suffix starting at 1. The table is scoped to the allocator, not the
// process, so each stage run starts clean.
type NameAllocator struct {
	counts map[string]int
}

// NewNameAllocator returns an empty allocation table.
func NewNameAllocator() *NameAllocator {
	return &NameAllocator{counts: make(map[string]int)}
}

// Claim reserves a filename for base and reports whether it collided
// with an earlier claim.
func (a *NameAllocator) Claim(base string) (name string, duplicate bool) {
	n := a.counts[base]
	a.counts[base] = n + 1
	if n == 0 {
		return base, false
	}
	return base + "_" + strconv.Itoa(n), true
}
