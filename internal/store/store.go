// Package store persists processed output files under generated opaque
// identifiers for later download. The store is append-only: an id is never
// reused or overwritten, so concurrent requests need no coordination.
package store

import "errors"

// ErrNotFound is returned by Get when no file exists for the given id.
var ErrNotFound = errors.New("file not found")

// Store holds processed output bytes keyed by generated identifiers.
type Store interface {
	// Put saves data under a freshly generated id and returns the id.
	Put(data []byte) (string, error)

	// Get returns the bytes stored under id, or ErrNotFound.
	Get(id string) ([]byte, error)
}
