package engine

import (
	"github.com/refract-engine/refract/internal/ir"
)

// unify attempts to match a pattern against a ground fact under existing
// bindings, walking the tuples position-wise:
//
//   - a constant term must equal the fact's term exactly
//   - a bound variable must resolve to the fact's term (consistency)
//   - an unbound variable extends the bindings with (variable → term)
//
// On success the returned binding set is a fresh extension of the input;
// the input is never mutated, which is what lets the conjunctive fold
// backtrack across antecedents. Arity mismatch simply fails to unify:
// a rule whose pattern can never match any fact of a different width is
// caught structurally here, and rule shape problems are the compiler's
// job at load time.
func unify(pattern ir.Pattern, fact ir.Fact, bindings ir.Bindings) (ir.Bindings, bool) {
	if len(pattern) != len(fact) {
		return nil, false
	}

	extended := bindings.Clone()
	for i, term := range pattern {
		if term.IsConstant() {
			if string(term) != fact[i] {
				return nil, false
			}
			continue
		}

		if bound, ok := extended[string(term)]; ok {
			if bound != fact[i] {
				return nil, false
			}
			continue
		}
		extended[string(term)] = fact[i]
	}

	return extended, true
}

// substitute instantiates a pattern under a binding set. The second
// return value reports whether the result is fully ground; a variable
// left unbound is passed through verbatim so the caller can report it.
func substitute(pattern ir.Pattern, bindings ir.Bindings) (ir.Fact, bool) {
	fact := make(ir.Fact, len(pattern))
	ground := true
	for i, term := range pattern {
		if term.IsVariable() {
			if v, ok := bindings[string(term)]; ok {
				fact[i] = v
				continue
			}
			fact[i] = string(term)
			ground = false
			continue
		}
		fact[i] = string(term)
	}
	return fact, ground
}
