package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/refract-engine/refract/internal/compiler"
	"github.com/refract-engine/refract/internal/engine"
	"github.com/refract-engine/refract/internal/ir"
	"github.com/refract-engine/refract/internal/testutil"
)

// scenarioRunID keeps golden traces stable across runs.
const scenarioRunID = "scenario-run"

// Run executes a scenario: compile the rule set, assert the initial
// facts, drive the engine to termination, then evaluate every expect
// clause. A failed expectation marks the result, it does not error;
// errors are reserved for scenarios that cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	src, err := os.ReadFile(scenario.Rules)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := compiler.CompileBytes(scenario.Rules, src)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	if errs := compiler.Validate(rules); len(errs) > 0 {
		return nil, fmt.Errorf("invalid rules: %s", errs[0].Error())
	}

	opts := []engine.Option{
		engine.WithRunIDGenerator(testutil.NewConstantRunGenerator(scenarioRunID)),
	}
	if scenario.Strategy != "" {
		strategy, err := engine.ParseStrategy(scenario.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithStrategy(strategy))
	}
	if scenario.MaxCycles > 0 {
		opts = append(opts, engine.WithMaxCycles(scenario.MaxCycles))
	}

	eng, err := engine.New(rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	facts := make([]ir.Fact, 0, len(scenario.Facts))
	for _, tuple := range scenario.Facts {
		facts = append(facts, ir.NewFact(tuple...))
	}
	if err := eng.Assert(facts...); err != nil {
		return nil, fmt.Errorf("assert facts: %w", err)
	}

	runResult, runErr := eng.Run(context.Background())
	if runErr != nil && scenario.Expect.State != string(engine.StateFailed) {
		return nil, fmt.Errorf("run: %w", runErr)
	}

	result := NewResult()
	result.State = string(runResult.State)
	for _, firing := range runResult.Firings {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:      firing.Seq,
			Rule:     firing.Rule,
			Bindings: map[string]string(firing.Bindings),
			Fact:     []string(firing.Fact),
			New:      firing.New,
		})
	}
	for _, fact := range eng.Memory().Facts() {
		result.Facts = append(result.Facts, []string(fact))
	}

	evaluate(scenario, result, eng.Memory())

	return result, nil
}

// evaluate applies every expect clause and records each mismatch.
func evaluate(scenario *Scenario, result *Result, mem *engine.Memory) {
	e := scenario.Expect

	if e.State != "" && result.State != e.State {
		result.AddError(fmt.Sprintf("state: expected %s, got %s", e.State, result.State))
	}

	for _, tuple := range e.Derived {
		if err := assertPresent(mem, ir.NewFact(tuple...)); err != nil {
			result.AddError(err.Error())
		}
	}

	for _, tuple := range e.Absent {
		if err := assertAbsent(mem, ir.NewFact(tuple...)); err != nil {
			result.AddError(err.Error())
		}
	}

	if len(e.FiringOrder) > 0 {
		if err := assertFiringOrder(result.Trace, e.FiringOrder); err != nil {
			result.AddError(err.Error())
		}
	}

	if e.FiringCount != nil && len(result.Trace) != *e.FiringCount {
		result.AddError(fmt.Sprintf("firing_count: expected %d, got %d", *e.FiringCount, len(result.Trace)))
	}
}
