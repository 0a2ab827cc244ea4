// Package id generates opaque string identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "run-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewRunID identifies one suggestion generation run. Every row written by
// the run carries it.
func NewRunID() (string, error) {
	return Generate("run")
}
