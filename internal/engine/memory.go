package engine

import (
	"github.com/refract-engine/refract/internal/ir"
)

// Memory is the working memory: an insertion-ordered set of ground facts
// plus the provenance index for derived facts.
//
// Facts are never removed or mutated; the set only grows. Iteration order
// is insertion order, which keeps the matcher's binding-set discovery
// order — and therefore the Order strategy — deterministic.
//
// A Memory is exclusively owned by one Engine run. Comparing strategies
// means building a fresh Memory per run from the same initial facts.
type Memory struct {
	facts      []ir.Fact
	index      map[string]int            // fact key → position in facts
	provenance map[string]*ir.Provenance // fact key → why it was derived
}

// NewMemory creates an empty working memory.
func NewMemory() *Memory {
	return &Memory{
		index:      make(map[string]int),
		provenance: make(map[string]*ir.Provenance),
	}
}

// insert adds a fact, optionally with provenance. Returns false if the
// fact was already present; duplicates never overwrite existing
// provenance (initial facts stay initial).
func (m *Memory) insert(fact ir.Fact, prov *ir.Provenance) bool {
	key := fact.Key()
	if _, exists := m.index[key]; exists {
		return false
	}
	m.index[key] = len(m.facts)
	m.facts = append(m.facts, fact)
	if prov != nil {
		m.provenance[key] = prov
	}
	return true
}

// Contains reports whether the fact is in memory.
func (m *Memory) Contains(fact ir.Fact) bool {
	_, ok := m.index[fact.Key()]
	return ok
}

// Len returns the number of facts in memory.
func (m *Memory) Len() int { return len(m.facts) }

// Facts returns the facts in insertion order. The slice is a copy; the
// facts themselves are shared but never mutated.
func (m *Memory) Facts() []ir.Fact {
	out := make([]ir.Fact, len(m.facts))
	copy(out, m.facts)
	return out
}

// Provenance returns the provenance record for a derived fact. Initial
// facts, and facts not in memory, have none.
func (m *Memory) Provenance(fact ir.Fact) (*ir.Provenance, bool) {
	p, ok := m.provenance[fact.Key()]
	return p, ok
}
