package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-engine/refract/internal/ir"
)

func memWith(facts ...ir.Fact) *Memory {
	m := NewMemory()
	for _, f := range facts {
		m.insert(f, nil)
	}
	return m
}

func TestMatchAntecedents_SingleAntecedent(t *testing.T) {
	mem := memWith(
		ir.NewFact("enrolled", "Alice", "CS101"),
		ir.NewFact("enrolled", "Bob", "CS102"),
		ir.NewFact("completed", "Alice", "CS001"),
	)

	results := matchAntecedents([]ir.Pattern{{"enrolled", "?s", "?c"}}, mem)

	require.Len(t, results, 2)
	// Discovery order follows memory insertion order.
	assert.Equal(t, ir.Bindings{"?s": "Alice", "?c": "CS101"}, results[0])
	assert.Equal(t, ir.Bindings{"?s": "Bob", "?c": "CS102"}, results[1])
}

func TestMatchAntecedents_ConjunctiveConsistency(t *testing.T) {
	// ?c links the two antecedents: only CS501 is both enrolled-in by
	// Alice and graduate-only.
	mem := memWith(
		ir.NewFact("enrolled", "Alice", "CS501"),
		ir.NewFact("enrolled", "Alice", "CS101"),
		ir.NewFact("graduate-only", "CS501"),
	)

	results := matchAntecedents([]ir.Pattern{
		{"enrolled", "?s", "?c"},
		{"graduate-only", "?c"},
	}, mem)

	require.Len(t, results, 1)
	assert.Equal(t, ir.Bindings{"?s": "Alice", "?c": "CS501"}, results[0])
}

func TestMatchAntecedents_MultipleJointSolutions(t *testing.T) {
	mem := memWith(
		ir.NewFact("parent", "ann", "bob"),
		ir.NewFact("parent", "bob", "cal"),
		ir.NewFact("parent", "cal", "dee"),
	)

	// Grandparent join: every (x, z) with a shared middle y.
	results := matchAntecedents([]ir.Pattern{
		{"parent", "?x", "?y"},
		{"parent", "?y", "?z"},
	}, mem)

	require.Len(t, results, 2)
	assert.Equal(t, ir.Bindings{"?x": "ann", "?y": "bob", "?z": "cal"}, results[0])
	assert.Equal(t, ir.Bindings{"?x": "bob", "?y": "cal", "?z": "dee"}, results[1])
}

func TestMatchAntecedents_NoMatch(t *testing.T) {
	mem := memWith(ir.NewFact("likes", "Eve", "AI"))

	results := matchAntecedents([]ir.Pattern{
		{"enrolled", "?s", "?c"},
	}, mem)

	assert.Empty(t, results)
}

func TestMatchAntecedents_FailingMiddleAntecedentPrunesAll(t *testing.T) {
	mem := memWith(
		ir.NewFact("a", "1"),
		ir.NewFact("c", "1"),
	)

	results := matchAntecedents([]ir.Pattern{
		{"a", "?x"},
		{"b", "?x"}, // nothing matches
		{"c", "?x"},
	}, mem)

	assert.Empty(t, results)
}

func TestConflictSet_RefractionFilters(t *testing.T) {
	rules := []ir.Rule{{
		Name:        "r",
		Antecedents: []ir.Pattern{{"p", "?x"}},
		Consequent:  ir.Pattern{"q", "?x"},
	}}
	eng, err := New(rules)
	require.NoError(t, err)
	require.NoError(t, eng.Assert(ir.NewFact("p", "1"), ir.NewFact("p", "2")))

	first := eng.conflictSet()
	require.Len(t, first, 2)

	// Record one firing; only the other instantiation stays eligible.
	eng.history.Record(first[0].key)

	second := eng.conflictSet()
	require.Len(t, second, 1)
	assert.Equal(t, first[1].key, second[0].key)
}
