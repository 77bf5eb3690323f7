package store

import "errors"

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated,
	// e.g. registering an email that already has an account.
	ErrConflict = errors.New("already exists")
)
