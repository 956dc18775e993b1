package state

import (
	"context"
)

// Store remembers which report files were already parsed, so repeated runs
// over a growing report directory skip unchanged files. Keys are file
// paths, values the hex SHA-256 digest of the content that was parsed.
// Implementations: BoltDB.
type Store interface {
	// Get returns the stored digest for path, or "" when the path is
	// unknown.
	Get(ctx context.Context, path string) (string, error)

	// Set records digest as the parsed content of path.
	Set(ctx context.Context, path, digest string) error

	// Delete forgets path.
	Delete(ctx context.Context, path string) error

	// List returns all stored digests keyed by path.
	List(ctx context.Context) (map[string]string, error)

	// Close closes the store.
	Close() error
}
