package engine

import (
	"fmt"
)

// Strategy names a conflict-resolution policy. All three share the same
// tie-break: the first candidate in the stable enumeration order (rules
// in declaration order, binding sets in discovery order). That shared
// tie-break is what makes every strategy deterministic.
type Strategy string

const (
	// StrategyPriority picks the candidate whose rule has the highest
	// priority value.
	StrategyPriority Strategy = "priority"

	// StrategySpecificity picks the candidate whose rule has the most
	// antecedents.
	StrategySpecificity Strategy = "specificity"

	// StrategyOrder picks the first candidate in enumeration order.
	StrategyOrder Strategy = "order"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPriority, StrategySpecificity, StrategyOrder:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict-resolution strategy %q (want priority, specificity, or order)", s)
	}
}

// selectCandidate picks exactly one instantiation from a non-empty
// conflict set. It is a pure function of the candidates plus static rule
// metadata: identical inputs always yield the identical selection.
//
// Calling it on an empty set is a driver bug, reported as an internal
// invariant violation rather than recovered from.
func selectCandidate(strategy Strategy, candidates []candidate) (candidate, error) {
	if len(candidates) == 0 {
		return candidate{}, newEmptyConflictSetError(strategy)
	}

	switch strategy {
	case StrategySpecificity:
		return maxBy(candidates, func(c candidate) int { return c.rule.Specificity() }), nil
	case StrategyPriority:
		return maxBy(candidates, func(c candidate) int { return c.rule.Priority }), nil
	default: // StrategyOrder
		return candidates[0], nil
	}
}

// maxBy returns the first candidate with the maximum score — strictly
// greater replaces, equal keeps, so ties resolve to enumeration order.
func maxBy(candidates []candidate, score func(candidate) int) candidate {
	best := candidates[0]
	bestScore := score(best)
	for _, c := range candidates[1:] {
		if s := score(c); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}
