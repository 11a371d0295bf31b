package ir

import (
	"fmt"
	"sort"
	"strings"
)

// VariablePrefix marks a term as a variable inside rule patterns.
// Facts never carry it.
const VariablePrefix = "?"

// Term is a single position in a fact or pattern. A term starting with
// "?" is a variable; anything else is a constant.
type Term string

// IsVariable reports whether the term is a variable ("?name").
func (t Term) IsVariable() bool {
	return strings.HasPrefix(string(t), VariablePrefix)
}

// IsConstant reports whether the term is a ground constant.
func (t Term) IsConstant() bool {
	return !t.IsVariable()
}

// Pattern is an ordered tuple of terms, possibly containing variables.
// Patterns appear only inside rules; they are never stored in memory.
type Pattern []Term

// Arity returns the number of positions in the pattern.
func (p Pattern) Arity() int { return len(p) }

// IsGround reports whether the pattern contains no variables.
func (p Pattern) IsGround() bool {
	for _, t := range p {
		if t.IsVariable() {
			return false
		}
	}
	return true
}

// Variables returns the distinct variable names in positional order.
func (p Pattern) Variables() []string {
	seen := make(map[string]bool, len(p))
	var vars []string
	for _, t := range p {
		if t.IsVariable() && !seen[string(t)] {
			seen[string(t)] = true
			vars = append(vars, string(t))
		}
	}
	return vars
}

// String renders the pattern as "(a, ?x, b)".
func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = string(t)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Fact is an ordered tuple of constants — a ground atom. Facts are
// compared by structural equality; Key() provides the canonical set key.
type Fact []string

// NewFact builds a fact from its terms.
func NewFact(terms ...string) Fact { return Fact(terms) }

// Arity returns the number of positions in the fact.
func (f Fact) Arity() int { return len(f) }

// Equal reports positional equality of two facts.
func (f Fact) Equal(other Fact) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns the canonical JSON encoding of the tuple. Unlike a plain
// join it is unambiguous for terms containing separators, and it is the
// form hashed by FactID.
func (f Fact) Key() string {
	return string(canonicalTuple(f))
}

// String renders the fact as "(enrolled, Alice, CS101)".
func (f Fact) String() string {
	return "(" + strings.Join(f, ", ") + ")"
}

// Rule is a declarative production: if every antecedent pattern matches
// jointly, the consequent template is asserted under the winning bindings.
//
// INVARIANTS (enforced at load time by the compiler):
//   - Antecedents is non-empty
//   - every variable in Consequent is bound by some antecedent
//   - no empty or bare-"?" terms anywhere
type Rule struct {
	Name        string
	Antecedents []Pattern
	Consequent  Pattern
	Priority    int
}

// Specificity is the antecedent count, used by the Specificity strategy.
func (r Rule) Specificity() int { return len(r.Antecedents) }

// Bindings maps a variable name (including the "?" prefix) to the
// constant it resolved to. Binding sets are never mutated after
// construction; extension happens on a copy (see Clone).
type Bindings map[string]string

// Clone returns an independent copy. Cloning nil yields an empty set.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Equal reports order-independent map equality.
func (b Bindings) Equal(other Bindings) bool {
	if len(b) != len(other) {
		return false
	}
	for k, v := range b {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders bindings deterministically as "{?c→CS501, ?s→Alice}".
func (b Bindings) String() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s→%s", k, b[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Instantiation pairs a rule with one consistent binding set. Two
// instantiations are the same iff rule name and binding content match,
// which is exactly what Key() encodes.
type Instantiation struct {
	Rule     string
	Bindings Bindings
}

// Key returns the refraction identity "rule:bindinghash".
func (in Instantiation) Key() string {
	return in.Rule + ":" + BindingHash(in.Bindings)
}

// Provenance records why a derived fact exists: the rule that fired, the
// bindings it fired under, and the ground antecedent instances that
// supported it, in antecedent order. Initial facts carry no provenance.
type Provenance struct {
	Rule     string
	Bindings Bindings
	Supports []Fact
}
