package engine

import (
	"github.com/refract-engine/refract/internal/ir"
)

// matchAntecedents finds every binding set satisfying all antecedents
// jointly. It is an explicit fold: the surviving binding sets after
// antecedent i-1 are each extended against every fact in memory for
// antecedent i, and only consistent extensions survive.
//
// The result order is fully determined: antecedents in rule order, facts
// in insertion order, partial bindings in the order they survived. That
// discovery order is the Order strategy's enumeration order.
//
// Complexity is combinatorial in antecedent count × memory size, which is
// fine at the scale this engine targets.
func matchAntecedents(antecedents []ir.Pattern, mem *Memory) []ir.Bindings {
	survivors := []ir.Bindings{nil} // one empty partial binding set

	for _, pattern := range antecedents {
		var next []ir.Bindings
		for _, partial := range survivors {
			for _, fact := range mem.facts {
				if extended, ok := unify(pattern, fact, partial); ok {
					next = append(next, extended)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		survivors = next
	}

	return survivors
}

// candidate is one eligible instantiation in the conflict set, carrying
// the rule metadata the strategies dispatch on.
type candidate struct {
	rule     *ir.Rule
	bindings ir.Bindings
	key      string // refraction identity, computed once
}

// conflictSet enumerates all instantiations across all rules against the
// current memory and filters out those already fired (refraction). Rules
// are scanned in declaration order; the returned slice preserves the
// stable enumeration order the strategies tie-break on.
func (e *Engine) conflictSet() []candidate {
	var out []candidate
	for i := range e.rules {
		rule := &e.rules[i]
		for _, bindings := range matchAntecedents(rule.Antecedents, e.memory) {
			inst := ir.Instantiation{Rule: rule.Name, Bindings: bindings}
			key := inst.Key()
			if e.history.Fired(key) {
				continue
			}
			out = append(out, candidate{rule: rule, bindings: bindings, key: key})
		}
	}
	return out
}
