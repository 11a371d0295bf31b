package engine

import (
	"log/slog"

	"github.com/refract-engine/refract/internal/ir"
)

// Firing is the record of one fired instantiation, stamped with the
// logical clock. The firing sequence of a run is its trace.
type Firing struct {
	Seq      int64
	Rule     string
	Bindings ir.Bindings
	Fact     ir.Fact   // the ground consequent
	New      bool      // false when the fact was already in memory
	Supports []ir.Fact // ground antecedent instances, in antecedent order
}

// fire applies the winning instantiation: substitute the consequent, add
// the resulting fact to memory with provenance, and append to the fired
// history.
//
// Deriving an already-known fact is a no-op on memory — no new fact, no
// new provenance — but the firing still consumes refraction so the same
// instantiation can never be selected again.
func (e *Engine) fire(c candidate) (Firing, error) {
	fact, ground := substitute(c.rule.Consequent, c.bindings)
	if !ground {
		return Firing{}, newUnboundConsequentError(c.rule.Name, fact.String())
	}

	// Recover the ground antecedent instances for provenance. The winning
	// bindings satisfy every antecedent, so these are always ground.
	supports := make([]ir.Fact, len(c.rule.Antecedents))
	for i, ant := range c.rule.Antecedents {
		supports[i], _ = substitute(ant, c.bindings)
	}

	e.history.Record(c.key)

	isNew := false
	if !e.memory.Contains(fact) {
		e.memory.insert(fact, &ir.Provenance{
			Rule:     c.rule.Name,
			Bindings: c.bindings,
			Supports: supports,
		})
		isNew = true
	}

	firing := Firing{
		Seq:      e.clock.Next(),
		Rule:     c.rule.Name,
		Bindings: c.bindings,
		Fact:     fact,
		New:      isNew,
		Supports: supports,
	}

	slog.Info("rule fired",
		"rule", firing.Rule,
		"bindings", firing.Bindings.String(),
		"fact", firing.Fact.String(),
		"new", firing.New,
		"seq", firing.Seq,
	)

	return firing, nil
}
