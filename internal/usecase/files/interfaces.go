package files

import (
	"context"
)

// Indexer triggers rebuilds of a user's retrieval index.
type Indexer interface {
	IndexAll(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

// EngineInvalidator drops cached chat engines after file changes.
type EngineInvalidator interface {
	Invalidate(userID string)
}

// Downloader fetches remote file content for upload-by-URL.
type Downloader interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
