package testutil

// FixedLoadIDs returns the same load id every time.
//
// Log lines and snapshots of a scenario stay byte-identical across runs.
//
// Thread-safety: FixedLoadIDs is stateless and safe for concurrent use.
type FixedLoadIDs struct {
	id string
}

// NewFixedLoadIDs creates a fixed load id generator.
// If id is empty, Generate() returns "test-load-default".
func NewFixedLoadIDs(id string) *FixedLoadIDs {
	if id == "" {
		id = "test-load-default"
	}
	return &FixedLoadIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedLoadIDs) Generate() string {
	return g.id
}
