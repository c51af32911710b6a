package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/futig/rag-gateway/internal/entity"
)

// Local stores each user's files in a directory under the data dir.
type Local struct {
	dataDir string
}

func NewLocal(dataDir string) *Local {
	return &Local{dataDir: dataDir}
}

func (l *Local) userDir(userID string) string {
	return filepath.Join(l.dataDir, userID)
}

func (l *Local) List(ctx context.Context, userID string) ([]string, error) {
	entries, err := os.ReadDir(l.userDir(userID))
	if errors.Is(err, fs.ErrNotExist) {
		// No uploads yet for this user
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (l *Local) Upload(ctx context.Context, userID, name string, content io.Reader) error {
	dir := l.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filepath.Base(name)))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (l *Local) Download(ctx context.Context, userID, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.userDir(userID), filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, entity.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, userID, name string) error {
	err := os.Remove(filepath.Join(l.userDir(userID), filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return entity.ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

var _ Adapter = (*Local)(nil)
