package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no shape graph is stored for a source.
	ErrNotFound = errors.New("shape graph not found")
)
