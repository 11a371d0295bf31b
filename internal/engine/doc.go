// Package engine implements the forward-chaining inference loop.
//
// The engine is a closed-loop batch computation: given a rule set and an
// initial working memory, it repeatedly matches rules against memory,
// selects one eligible instantiation via the configured conflict-resolution
// strategy, fires it, and records provenance — until no unfired
// instantiation remains (saturation).
//
// ARCHITECTURE:
//
// Single-Owner Run Loop:
// One Engine instance owns one working memory and one fired-instantiation
// history for the duration of a run. There is no shared state and no
// concurrency; match-then-fire is a single logical transaction per cycle.
// This ensures:
//   - Predictable rule evaluation order
//   - Reproducible firing sequences for golden traces
//   - Simple reasoning about provenance
//
// Cycle:
//  1. Enumerate instantiations for every rule in declaration order
//     (conjunctive antecedent fold, binding sets in discovery order)
//  2. Drop instantiations already in the fired history (refraction)
//  3. If nothing remains, the run is saturated — stop
//  4. Select exactly one instantiation via the strategy
//  5. Fire it: substitute the consequent, insert the fact with provenance,
//     append to history, stamp the firing with the logical clock
//
// DETERMINISM:
// Rules are evaluated in declaration order, facts in insertion order, and
// all three strategies share the same first-encountered tie-break. The
// same rules, facts, and strategy always produce the same firing sequence.
// Firings are stamped with a monotonic seq counter, never wall-clock time.
package engine
