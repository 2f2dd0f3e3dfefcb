package loader

import (
	"sync"

	"github.com/google/uuid"
)

// LoadIDGenerator names eager-load calls for log correlation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type LoadIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 load ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids in logs
// sort by the time the load started.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined load ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("load-1", "load-2")
//	gen.Generate() // "load-1"
//	gen.Generate() // "load-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, which means a test ran more loads
// than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
