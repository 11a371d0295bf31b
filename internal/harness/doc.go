// Package harness runs YAML-defined scenarios against the engine: a
// rule-set file, initial facts, and expectations about the derived
// facts, firing order, and terminal state. Scenarios double as
// conformance tests and as golden-trace fixtures.
package harness
