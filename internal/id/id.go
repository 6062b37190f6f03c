// Package id provides unique identifier generation utilities.
// This is the canonical source for ID generation across the module.
package id

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// UUID generates a UUID v4 (random), used for endpoint, request-log, and
// history-entry identifiers. Collision-free across a process lifetime.
func UUID() string {
	return uuid.New().String()
}

// Short generates a short random hex ID (8 characters), for places where
// brevity matters more than global uniqueness guarantees.
func Short() string {
	u := uuid.New()
	return u.String()[:8]
}

// Alphanumeric generates a random alphanumeric string of the specified
// length, using uppercase, lowercase letters and digits.
func Alphanumeric(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	randBytes := make([]byte, length)
	_, _ = rand.Read(randBytes)
	for i := range b {
		b[i] = charset[int(randBytes[i])%len(charset)]
	}
	return string(b)
}
