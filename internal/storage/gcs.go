package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/futig/rag-gateway/internal/entity"
)

// GCS stores each user's files under {prefix}/{userID}/ in a bucket.
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// WithScope returns an adapter bound to another bucket or prefix for a
// single request. Empty arguments keep the configured values.
func (g *GCS) WithScope(bucket, prefix string) Adapter {
	scoped := *g
	if bucket != "" {
		scoped.bucket = bucket
	}
	if prefix != "" {
		scoped.prefix = prefix
	}
	return &scoped
}

func (g *GCS) objectKey(userID, name string) string {
	return path.Join(g.prefix, userID, path.Base(name))
}

func (g *GCS) List(ctx context.Context, userID string) ([]string, error) {
	keyPrefix := path.Join(g.prefix, userID) + "/"

	var names []string
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: keyPrefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		names = append(names, strings.TrimPrefix(attrs.Name, keyPrefix))
	}
	return names, nil
}

func (g *GCS) Upload(ctx context.Context, userID, name string, content io.Reader) error {
	w := g.client.Bucket(g.bucket).Object(g.objectKey(userID, name)).NewWriter(ctx)
	if _, err := io.Copy(w, content); err != nil {
		w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object writer: %w", err)
	}
	return nil
}

func (g *GCS) Download(ctx context.Context, userID, name string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(g.objectKey(userID, name)).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, entity.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return r, nil
}

func (g *GCS) Delete(ctx context.Context, userID, name string) error {
	err := g.client.Bucket(g.bucket).Object(g.objectKey(userID, name)).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return entity.ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

var _ Adapter = (*GCS)(nil)
var _ BucketScoper = (*GCS)(nil)
