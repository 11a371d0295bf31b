package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping firings in derivation
// order. Firing seq numbers — never wall-clock timestamps — are the
// ordering authority for traces, journals, and explanations.
//
// Thread-safety: atomic, though the engine's single-owner design means
// only one goroutine calls Next() during a run.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
