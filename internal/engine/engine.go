package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/refract-engine/refract/internal/ir"
)

// State is the driver's lifecycle state.
type State string

const (
	// StateRunning means the engine is mid-run (or has not started).
	StateRunning State = "RUNNING"

	// StateSaturated is the normal terminal state: no eligible
	// instantiation remains.
	StateSaturated State = "SATURATED"

	// StateFailed is the abnormal terminal state: an invariant violation
	// or cancelled context ended the run.
	StateFailed State = "FAILED"
)

// DefaultMaxCycles bounds a single run. Termination is guaranteed by
// refraction over a finite instantiation universe, but the guard turns a
// misbehaving embedding into a loud error instead of a long wait.
const DefaultMaxCycles = 10000

// Engine drives one run to saturation over a rule set and a working
// memory it exclusively owns.
//
// INVARIANTS:
//   - rules slice order never changes after construction
//   - memory only grows; facts are never mutated or retracted
//   - an instantiation fires at most once per run (refraction)
//   - one firing per cycle, so derivation order equals firing order
type Engine struct {
	rules    []ir.Rule
	strategy Strategy
	memory   *Memory
	history  *History
	clock    *Clock
	runGen   RunIDGenerator

	maxCycles int
	state     State
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy selects the conflict-resolution strategy.
// Default: StrategyPriority.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithMaxCycles sets the run cycle guard. Default: DefaultMaxCycles.
func WithMaxCycles(n int) Option {
	return func(e *Engine) { e.maxCycles = n }
}

// WithRunIDGenerator overrides run ID generation (fixed IDs in tests).
// Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.runGen = g }
}

// New creates an Engine for one run. The rules slice is copied to
// protect the declaration-order invariant from external mutation, and
// validated structurally: a malformed rule set refuses to start.
func New(rules []ir.Rule, opts ...Option) (*Engine, error) {
	rulesCopy := make([]ir.Rule, len(rules))
	copy(rulesCopy, rules)

	e := &Engine{
		rules:     rulesCopy,
		strategy:  StrategyPriority,
		memory:    NewMemory(),
		history:   NewHistory(),
		clock:     NewClock(),
		runGen:    UUIDv7Generator{},
		maxCycles: DefaultMaxCycles,
		state:     StateRunning,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := validateRules(e.rules); err != nil {
		return nil, err
	}
	return e, nil
}

// validateRules rejects structurally malformed rules before a run can
// start: duplicate names, zero antecedents, empty or bare-"?" terms, and
// consequent variables no antecedent binds.
func validateRules(rules []ir.Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("rule with empty name")
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate rule name: %s", r.Name)
		}
		seen[r.Name] = true

		if len(r.Antecedents) == 0 {
			return fmt.Errorf("rule %s: at least one antecedent is required", r.Name)
		}

		bound := make(map[string]bool)
		for i, ant := range r.Antecedents {
			if len(ant) == 0 {
				return fmt.Errorf("rule %s: antecedent %d is empty", r.Name, i)
			}
			for _, term := range ant {
				if err := checkTerm(term); err != nil {
					return fmt.Errorf("rule %s: antecedent %d: %w", r.Name, i, err)
				}
			}
			for _, v := range ant.Variables() {
				bound[v] = true
			}
		}

		if len(r.Consequent) == 0 {
			return fmt.Errorf("rule %s: consequent is empty", r.Name)
		}
		for _, term := range r.Consequent {
			if err := checkTerm(term); err != nil {
				return fmt.Errorf("rule %s: consequent: %w", r.Name, err)
			}
		}
		for _, v := range r.Consequent.Variables() {
			if !bound[v] {
				return fmt.Errorf("rule %s: consequent variable %s is not bound by any antecedent", r.Name, v)
			}
		}
	}
	return nil
}

func checkTerm(t ir.Term) error {
	if t == "" {
		return fmt.Errorf("empty term")
	}
	if string(t) == ir.VariablePrefix {
		return fmt.Errorf("bare %q is not a valid variable", ir.VariablePrefix)
	}
	return nil
}

// Assert adds initial facts to working memory before the run. Facts must
// be ground and non-empty; the engine does not judge domain semantics.
// Asserting a duplicate is a silent no-op.
func (e *Engine) Assert(facts ...ir.Fact) error {
	for _, f := range facts {
		if len(f) == 0 {
			return newInvalidFactError(f.String(), "empty tuple")
		}
		for _, term := range f {
			if ir.Term(term).IsVariable() {
				return newInvalidFactError(f.String(), fmt.Sprintf("term %s is a variable", term))
			}
		}
		e.memory.insert(f, nil)
	}
	return nil
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Strategy Strategy
	State    State
	Cycles   int
	Firings  []Firing
	Derived  []ir.Fact // new facts in derivation order
}

// Run drives the loop to saturation and returns the run result.
//
// Each cycle: enumerate instantiations against the current memory, apply
// refraction, stop if nothing is eligible, otherwise select one
// instantiation and fire it. Firing may enable new matches, so every
// cycle rescans all rules — forward chaining's defining property.
//
// The context is checked between cycles only; a cycle's match-then-fire
// sequence is one logical transaction and is never interrupted.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:    e.runGen.Generate(),
		Strategy: e.strategy,
	}

	slog.Info("run starting",
		"run_id", result.RunID,
		"strategy", e.strategy,
		"rules", len(e.rules),
		"facts", e.memory.Len(),
	)

	for {
		if err := ctx.Err(); err != nil {
			e.state = StateFailed
			result.State = e.state
			return result, err
		}

		result.Cycles++
		if result.Cycles > e.maxCycles {
			e.state = StateFailed
			result.State = e.state
			return result, newMaxCyclesError(e.maxCycles)
		}

		candidates := e.conflictSet()
		slog.Debug("cycle scanned",
			"run_id", result.RunID,
			"cycle", result.Cycles,
			"candidates", len(candidates),
			"facts", e.memory.Len(),
		)

		if len(candidates) == 0 {
			e.state = StateSaturated
			result.State = e.state
			break
		}

		winner, err := selectCandidate(e.strategy, candidates)
		if err != nil {
			e.state = StateFailed
			result.State = e.state
			return result, err
		}

		firing, err := e.fire(winner)
		if err != nil {
			e.state = StateFailed
			result.State = e.state
			return result, err
		}

		result.Firings = append(result.Firings, firing)
		if firing.New {
			result.Derived = append(result.Derived, firing.Fact)
		}
	}

	slog.Info("run saturated",
		"run_id", result.RunID,
		"cycles", result.Cycles,
		"firings", len(result.Firings),
		"derived", len(result.Derived),
	)

	return result, nil
}

// State returns the driver state.
func (e *Engine) State() State { return e.state }

// Memory returns the engine's working memory. Callers must treat it as
// read-only; it is exposed for explanation building and final-state
// inspection after a run.
func (e *Engine) Memory() *Memory { return e.memory }

// Rules returns the rule set in declaration order.
// Used for testing and introspection.
func (e *Engine) Rules() []ir.Rule { return e.rules }

// Strategy returns the configured conflict-resolution strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }
