package harness

// TraceEvent is one firing in scenario order. Fields are plain
// JSON-friendly types so golden traces stay readable.
type TraceEvent struct {
	Seq      int64             `json:"seq"`
	Rule     string            `json:"rule"`
	Bindings map[string]string `json:"bindings"`
	Fact     []string          `json:"fact"`
	New      bool              `json:"new"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// State is the engine's terminal state ("SATURATED" or "FAILED").
	State string `json:"state"`

	// Trace contains every firing in order.
	Trace []TraceEvent `json:"trace"`

	// Facts is the final working memory in insertion order.
	Facts [][]string `json:"facts"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Facts:  [][]string{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
