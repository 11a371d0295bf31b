package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an invariant violation detected during a run.
//
// Unification failure and an empty conflict set are NOT errors — the
// first is an expected no-match, the second is the saturation signal.
// Runtime errors are the things that should never happen in a correct
// embedding: selecting from an empty set, firing a consequent that is
// still unground, or blowing through the cycle guard.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Rule identifies the rule involved, where applicable.
	Rule string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeEmptyConflictSet indicates the resolver was invoked on an
	// empty candidate set — a driver bug, not a terminal state.
	ErrCodeEmptyConflictSet RuntimeErrorCode = "EMPTY_CONFLICT_SET"

	// ErrCodeUnboundConsequent indicates substitution left a variable in
	// a consequent. Load-time validation should make this unreachable.
	ErrCodeUnboundConsequent RuntimeErrorCode = "UNBOUND_CONSEQUENT"

	// ErrCodeMaxCycles indicates the run exceeded the configured cycle
	// guard.
	ErrCodeMaxCycles RuntimeErrorCode = "MAX_CYCLES_EXCEEDED"

	// ErrCodeInvalidFact indicates an asserted fact was empty or
	// contained a variable term.
	ErrCodeInvalidFact RuntimeErrorCode = "INVALID_FACT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantViolation reports whether err is any engine RuntimeError.
// Uses errors.As to handle wrapped errors.
func IsInvariantViolation(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

func newEmptyConflictSetError(strategy Strategy) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeEmptyConflictSet,
		Message: "conflict resolver invoked on empty candidate set",
		Details: map[string]string{"strategy": string(strategy)},
	}
}

func newUnboundConsequentError(rule string, fact string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnboundConsequent,
		Message: fmt.Sprintf("consequent %s is not ground after substitution", fact),
		Rule:    rule,
	}
}

func newMaxCyclesError(limit int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMaxCycles,
		Message: fmt.Sprintf("run exceeded %d cycles", limit),
		Details: map[string]string{"limit": fmt.Sprintf("%d", limit)},
	}
}

func newInvalidFactError(fact string, reason string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidFact,
		Message: fmt.Sprintf("fact %s rejected: %s", fact, reason),
	}
}
