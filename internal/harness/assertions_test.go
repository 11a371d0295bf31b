package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceOf(rules ...string) []TraceEvent {
	trace := make([]TraceEvent, 0, len(rules))
	for i, rule := range rules {
		trace = append(trace, TraceEvent{Seq: int64(i + 1), Rule: rule})
	}
	return trace
}

func TestAssertFiringOrderExact(t *testing.T) {
	trace := traceOf("a", "b", "c")
	assert.NoError(t, assertFiringOrder(trace, []string{"a", "b", "c"}))
}

func TestAssertFiringOrderAllowsIntervening(t *testing.T) {
	trace := traceOf("a", "x", "b", "y", "c")
	assert.NoError(t, assertFiringOrder(trace, []string{"a", "c"}))
}

func TestAssertFiringOrderMissingRule(t *testing.T) {
	trace := traceOf("a", "b")

	err := assertFiringOrder(trace, []string{"a", "z"})

	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "firing_order", ae.Type)
	assert.Contains(t, ae.Actual, "never fired")
}

func TestAssertFiringOrderWrongOrder(t *testing.T) {
	trace := traceOf("b", "a")

	err := assertFiringOrder(trace, []string{"a", "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")
}

func TestAssertionErrorIncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     "firing_order",
		Expected: "a before b",
		Actual:   "b before a",
		Trace:    traceOf("b", "a"),
	}

	msg := err.Error()
	assert.Contains(t, msg, "Expected: a before b")
	assert.Contains(t, msg, "Firing trace:")
	assert.Contains(t, msg, "[1] b")
}
