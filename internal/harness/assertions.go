package harness

import (
	"fmt"
	"strings"

	"github.com/refract-engine/refract/internal/engine"
	"github.com/refract-engine/refract/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes the firing trace to help debug the failure.
type AssertionError struct {
	Type     string // Expectation type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFiring trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Rule, event.Fact)
		}
	}

	return buf.String()
}

// assertPresent checks that a fact is in final memory.
func assertPresent(mem *engine.Memory, fact ir.Fact) error {
	if mem.Contains(fact) {
		return nil
	}
	return &AssertionError{
		Type:     "derived",
		Expected: fmt.Sprintf("fact %s in final memory", fact),
		Actual:   "not present",
	}
}

// assertAbsent checks that a fact is NOT in final memory.
func assertAbsent(mem *engine.Memory, fact ir.Fact) error {
	if !mem.Contains(fact) {
		return nil
	}
	return &AssertionError{
		Type:     "absent",
		Expected: fmt.Sprintf("fact %s not in final memory", fact),
		Actual:   "present",
	}
}

// assertFiringOrder checks that rules fired in the given relative
// order. Firings don't need to be consecutive (intervening firings are
// allowed). Each expected name matches its first occurrence.
func assertFiringOrder(trace []TraceEvent, expected []string) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Rule]; !seen {
			positions[event.Rule] = i + 1 // 1-indexed for readability
		}
	}

	for _, rule := range expected {
		if positions[rule] == 0 {
			return &AssertionError{
				Type:     "firing_order",
				Expected: fmt.Sprintf("all rules fired: %v", expected),
				Actual:   fmt.Sprintf("rule never fired: %s", rule),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(expected); i++ {
		prev, curr := expected[i-1], expected[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     "firing_order",
				Expected: fmt.Sprintf("rules in order: %v", expected),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}
