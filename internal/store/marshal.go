package store

import (
	"encoding/json"
	"fmt"

	"github.com/refract-engine/refract/internal/ir"
)

// marshalTuple converts a fact to canonical JSON TEXT for storage.
// Canonical bytes keep journal rows stable across platforms, matching
// the content-addressed fact_id column.
func marshalTuple(f ir.Fact) string {
	return string(ir.CanonicalTuple(f))
}

// marshalBindings converts a binding set to canonical JSON TEXT with
// bytewise-sorted keys, matching the binding_hash column.
func marshalBindings(b ir.Bindings) string {
	return string(ir.CanonicalBindings(b))
}

// unmarshalTuple parses canonical JSON TEXT back to a fact.
func unmarshalTuple(data string) (ir.Fact, error) {
	var terms []string
	if err := json.Unmarshal([]byte(data), &terms); err != nil {
		return nil, fmt.Errorf("unmarshal tuple: %w", err)
	}
	return ir.Fact(terms), nil
}

// unmarshalBindings parses canonical JSON TEXT back to a binding set.
func unmarshalBindings(data string) (ir.Bindings, error) {
	if data == "" || data == "{}" {
		return ir.Bindings{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}
	return ir.Bindings(m), nil
}
