// Package ir defines the data model shared by every layer of the engine:
// terms, facts, patterns, rules, binding sets, instantiations, and
// provenance records.
//
// Everything here is value-like and comparable by content. Facts and
// binding sets get content-addressed identities (SHA-256 over canonical
// JSON with domain separation), which is what makes refraction bookkeeping
// and golden traces stable across runs and platforms.
package ir
