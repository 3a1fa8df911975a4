package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when an operation runs against a closed store.
	ErrClosed = errors.New("store closed")
)
