package engine

// History is the fired-instantiation record backing refraction: a given
// (rule, binding set) pair fires at most once per run.
//
// Keys are ir.Instantiation.Key() values — rule name plus binding hash —
// so equality is order-independent over binding content. The set is
// append-only for the lifetime of one run and discarded with it.
//
// History is owned by a single Engine run; no locking is needed.
type History struct {
	fired map[string]bool
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{fired: make(map[string]bool)}
}

// Fired reports whether the instantiation key has already fired.
func (h *History) Fired(key string) bool {
	return h.fired[key]
}

// Record marks an instantiation key as fired. Called by the executor
// after selection, never by the filter.
func (h *History) Record(key string) {
	h.fired[key] = true
}

// Len returns the number of fired instantiations.
func (h *History) Len() int { return len(h.fired) }
