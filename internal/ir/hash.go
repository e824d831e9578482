package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainExample         = "apigraph/example/v1"
	DomainEndpointExample = "apigraph/endpoint-example/v1"
	DomainIR              = "apigraph/ir/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ExampleID computes a content-addressed id for an example of typeID.
// Identical payloads on the same type always share an id.
func ExampleID(typeID TypeID, example Value) (string, error) {
	canonical, err := MarshalCanonical(example)
	if err != nil {
		return "", fmt.Errorf("ExampleID: failed to marshal: %w", err)
	}
	data := append([]byte(typeID), 0x00)
	data = append(data, canonical...)
	return hashWithDomain(DomainExample, data), nil
}

// EndpointExampleID computes a content-addressed id for an example call
// of endpoint.
func EndpointExampleID(endpoint EndpointID, example Value) (string, error) {
	canonical, err := MarshalCanonical(example)
	if err != nil {
		return "", fmt.Errorf("EndpointExampleID: failed to marshal: %w", err)
	}
	data := append([]byte(endpoint), 0x00)
	data = append(data, canonical...)
	return hashWithDomain(DomainEndpointExample, data), nil
}

// Fingerprint hashes a whole IR document. encoding/json writes map keys in
// sorted order and every slice in the IR has a deterministic order, so the
// fingerprint is stable across runs given identical input.
func Fingerprint(doc *IntermediateRepresentation) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainIR, data), nil
}

// MustExampleID is like ExampleID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustExampleID(typeID TypeID, example Value) string {
	id, err := ExampleID(typeID, example)
	if err != nil {
		panic(err)
	}
	return id
}
