package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity. The version suffix
// leaves room for algorithm migration.
const (
	DomainFact    = "refract/fact/v1"
	DomainBinding = "refract/binding/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FactID computes the content-addressed identity of a ground fact.
// Structurally equal facts always share an ID.
func FactID(f Fact) string {
	return hashWithDomain(DomainFact, canonicalTuple(f))
}

// BindingHash computes the identity of a binding set. Equal maps hash
// identically regardless of insertion or iteration order, which is what
// refraction keys and firing journal rows rely on.
func BindingHash(b Bindings) string {
	return hashWithDomain(DomainBinding, canonicalMap(map[string]string(b)))
}
