package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert collides with an existing
	// record's unique key.
	ErrDuplicate = errors.New("persistence: duplicate key")
	// ErrConstraintViolation is returned when a write violates a schema
	// constraint other than uniqueness.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
