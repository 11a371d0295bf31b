package ir

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Canonical JSON for the two shapes this engine hashes: string tuples
// (facts) and string maps (binding sets). Strings are NFC normalized and
// encoded without HTML escaping; map keys are sorted bytewise. The same
// inputs therefore produce the same bytes on every platform, which is
// what content-addressed identity requires.

// canonicalString encodes one string as a canonical JSON string.
func canonicalString(s string) []byte {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a plain string cannot fail.
	_ = enc.Encode(normalized)

	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1] // json.Encoder appends a newline
	}
	return out
}

// canonicalTuple encodes an ordered tuple as a canonical JSON array.
func canonicalTuple(terms []string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, t := range terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(t))
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// canonicalMap encodes a string map as a canonical JSON object with
// bytewise-sorted keys. Sorting makes binding-set identity independent of
// map iteration order.
func canonicalMap(m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(k))
		buf.WriteByte(':')
		buf.Write(canonicalString(m[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// CanonicalBindings exposes the canonical encoding of a binding set.
// Used for golden traces and journal storage.
func CanonicalBindings(b Bindings) []byte {
	return canonicalMap(map[string]string(b))
}

// CanonicalTuple exposes the canonical encoding of a fact tuple.
// Used for golden traces and journal storage.
func CanonicalTuple(f Fact) []byte {
	return canonicalTuple([]string(f))
}
