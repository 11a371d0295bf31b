package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-engine/refract/internal/ir"
)

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"priority", "specificity", "order"} {
		s, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, Strategy(valid), s)
	}

	_, err := ParseStrategy("random")
	assert.Error(t, err)
}

func candidatesFor(rules ...*ir.Rule) []candidate {
	out := make([]candidate, len(rules))
	for i, r := range rules {
		out[i] = candidate{rule: r, bindings: ir.Bindings{}, key: r.Name + ":k"}
	}
	return out
}

func TestSelectCandidate_Priority(t *testing.T) {
	low := &ir.Rule{Name: "low", Priority: 1, Antecedents: []ir.Pattern{{"a"}}}
	high := &ir.Rule{Name: "high", Priority: 9, Antecedents: []ir.Pattern{{"a"}}}

	winner, err := selectCandidate(StrategyPriority, candidatesFor(low, high))

	require.NoError(t, err)
	assert.Equal(t, "high", winner.rule.Name)
}

func TestSelectCandidate_Specificity(t *testing.T) {
	narrow := &ir.Rule{Name: "narrow", Priority: 9, Antecedents: []ir.Pattern{{"a"}}}
	wide := &ir.Rule{Name: "wide", Priority: 1, Antecedents: []ir.Pattern{{"a"}, {"b"}, {"c"}}}

	winner, err := selectCandidate(StrategySpecificity, candidatesFor(narrow, wide))

	require.NoError(t, err)
	assert.Equal(t, "wide", winner.rule.Name, "antecedent count beats priority under specificity")
}

func TestSelectCandidate_Order(t *testing.T) {
	first := &ir.Rule{Name: "first", Priority: 1, Antecedents: []ir.Pattern{{"a"}}}
	second := &ir.Rule{Name: "second", Priority: 9, Antecedents: []ir.Pattern{{"a"}, {"b"}}}

	winner, err := selectCandidate(StrategyOrder, candidatesFor(first, second))

	require.NoError(t, err)
	assert.Equal(t, "first", winner.rule.Name)
}

func TestSelectCandidate_TieBreaksToEnumerationOrder(t *testing.T) {
	a := &ir.Rule{Name: "a", Priority: 5, Antecedents: []ir.Pattern{{"p"}}}
	b := &ir.Rule{Name: "b", Priority: 5, Antecedents: []ir.Pattern{{"p"}}}
	cands := candidatesFor(a, b)

	for _, strategy := range []Strategy{StrategyPriority, StrategySpecificity, StrategyOrder} {
		t.Run(string(strategy), func(t *testing.T) {
			winner, err := selectCandidate(strategy, cands)
			require.NoError(t, err)
			assert.Equal(t, "a", winner.rule.Name, "equal scores keep the first candidate")
		})
	}
}

func TestSelectCandidate_Deterministic(t *testing.T) {
	a := &ir.Rule{Name: "a", Priority: 3, Antecedents: []ir.Pattern{{"p"}}}
	b := &ir.Rule{Name: "b", Priority: 7, Antecedents: []ir.Pattern{{"p"}}}
	cands := candidatesFor(a, b)

	first, err := selectCandidate(StrategyPriority, cands)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := selectCandidate(StrategyPriority, cands)
		require.NoError(t, err)
		assert.Equal(t, first.rule.Name, again.rule.Name)
	}
}

func TestSelectCandidate_EmptySetIsInvariantViolation(t *testing.T) {
	_, err := selectCandidate(StrategyPriority, nil)

	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeEmptyConflictSet, re.Code)
}
