// Package storage provides a uniform adapter over per-user file storage,
// backed by either a local directory or a GCS bucket.
package storage

import (
	"context"
	"io"
)

// Adapter lists, persists and removes files inside a user's namespace.
// Implementations must keep namespaces of different users disjoint.
type Adapter interface {
	// List returns the object names stored for the user.
	List(ctx context.Context, userID string) ([]string, error)

	// Upload persists content under the given name, replacing any
	// existing object.
	Upload(ctx context.Context, userID, name string, content io.Reader) error

	// Download opens the named object for reading.
	// Returns entity.ErrFileNotFound if it does not exist.
	Download(ctx context.Context, userID, name string) (io.ReadCloser, error)

	// Delete removes the named object.
	// Returns entity.ErrFileNotFound if it does not exist.
	Delete(ctx context.Context, userID, name string) error
}

// BucketScoper is implemented by bucket-backed adapters that can serve a
// request against an alternative bucket or prefix.
type BucketScoper interface {
	WithScope(bucket, prefix string) Adapter
}
