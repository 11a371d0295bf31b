// Package explain reconstructs derivation trees from provenance.
//
// A derivation tree answers "why does working memory contain this fact":
// the root is the fact itself, derived facts expand into the rule and
// bindings that produced them plus one subtree per supporting fact, and
// initial facts are leaves. Trees are built after a run from the
// engine's provenance records and never mutate the memory they read.
package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/refract-engine/refract/internal/ir"
)

// ProvenanceSource resolves the provenance of a fact. Satisfied by
// *engine.Memory.
type ProvenanceSource interface {
	Contains(f ir.Fact) bool
	Provenance(f ir.Fact) (*ir.Provenance, bool)
}

// Node is one step of a derivation tree. Initial facts have an empty
// Rule, nil Bindings, and no Supports.
type Node struct {
	Fact     ir.Fact     `json:"fact"`
	Rule     string      `json:"rule,omitempty"`
	Bindings ir.Bindings `json:"bindings,omitempty"`
	Supports []*Node     `json:"supports,omitempty"`
}

// Initial reports whether the node is an axiom rather than a derived
// fact.
func (n *Node) Initial() bool { return n.Rule == "" }

// Depth returns the longest chain length from this node to a leaf,
// counting the node itself. An initial fact has depth 1.
func (n *Node) Depth() int {
	max := 0
	for _, s := range n.Supports {
		if d := s.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Build reconstructs the derivation tree for fact. The expansion is
// depth-first with supports visited in antecedent order, so rendering
// the tree is deterministic for a deterministic run.
//
// Memory only grows and provenance is recorded exactly once per fact,
// so the provenance graph is acyclic: every support was in memory
// strictly before the fact it supports.
func Build(src ProvenanceSource, fact ir.Fact) (*Node, error) {
	if !src.Contains(fact) {
		return nil, fmt.Errorf("explain: fact %s is not in working memory", fact)
	}
	return build(src, fact), nil
}

func build(src ProvenanceSource, fact ir.Fact) *Node {
	node := &Node{Fact: fact}

	prov, ok := src.Provenance(fact)
	if !ok {
		return node
	}

	node.Rule = prov.Rule
	node.Bindings = prov.Bindings
	node.Supports = make([]*Node, 0, len(prov.Supports))
	for _, support := range prov.Supports {
		node.Supports = append(node.Supports, build(src, support))
	}
	return node
}

// Render writes the tree as indented text, two spaces per level:
//
//	(flag-violation, Alice, CS501) by grad-only-violation {?c→CS501, ?s→Alice}
//	  (enrolled, Alice, CS501) [initial]
//	  (graduate-only, CS501) [initial]
func Render(n *Node) string {
	var b strings.Builder
	render(&b, n, 0)
	return b.String()
}

func render(b *strings.Builder, n *Node, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString(n.Fact.String())
	if n.Initial() {
		b.WriteString(" [initial]\n")
		return
	}
	fmt.Fprintf(b, " by %s %s\n", n.Rule, n.Bindings)
	for _, s := range n.Supports {
		render(b, s, depth+1)
	}
}

// MarshalJSON renders the tree in a stable shape for the CLI's json
// output format.
func MarshalJSON(n *Node) ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}
