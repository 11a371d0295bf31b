package testutil

// ConstantRunGenerator returns the same run ID every time.
//
// This enables deterministic scenario execution and golden snapshot
// comparison: the same scenario with the same ConstantRunGenerator
// produces byte-identical traces.
//
// Unlike engine.FixedGenerator, which returns IDs in sequence and
// panics when exhausted, this generator never runs out. Use it where
// the number of runs is not known up front.
//
// Thread-safety: stateless after construction and safe for concurrent use.
type ConstantRunGenerator struct {
	id string
}

// NewConstantRunGenerator creates a generator for the given run ID.
// If id is empty, Generate() returns "test-run-default".
func NewConstantRunGenerator(id string) *ConstantRunGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &ConstantRunGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator.
func (g *ConstantRunGenerator) Generate() string {
	return g.id
}
