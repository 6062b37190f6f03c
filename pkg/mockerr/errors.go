// Package mockerr defines the sentinel errors shared across the store,
// engine, and admin facade. Handlers map these to HTTP status codes with
// errors.Is rather than string matching.
package mockerr

import "errors"

var (
	// ErrNotFound indicates a requested endpoint, history entry,
	// environment, connection, or resolver does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a create/update request is missing
	// required fields or carries an invalid value.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates an operation would violate a uniqueness
	// constraint (e.g. creating an endpoint whose ID is already taken).
	ErrConflict = errors.New("conflict")

	// ErrReadOnly indicates a write was attempted against a read-only
	// store.
	ErrReadOnly = errors.New("store is read-only")
)
