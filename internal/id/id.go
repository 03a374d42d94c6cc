// Package id generates opaque identifiers for stream clients and outbound requests.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Kind prefixes a generated identifier.
type Kind string

// Identifier kinds.
const (
	KindClient     Kind = "client"
	KindSubscriber Kind = "sub"
)

// Generate returns "<kind>-<nanoid>", e.g. "client-V1StGXR8_Z5jdHi6B-myT".
func Generate(kind Kind) (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate %s id: %w", kind, err)
	}
	return string(kind) + "-" + n, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
func MustGenerate(kind Kind) string {
	s, err := Generate(kind)
	if err != nil {
		panic(err)
	}
	return s
}

// RequestID returns a random UUID for correlating calls to the books service.
func RequestID() string {
	return uuid.NewString()
}
