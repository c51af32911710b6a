package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_RoundTrip(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	err := store.Upload(ctx, "u1", "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	names, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, names)

	rc, err := store.Download(ctx, "u1", "notes.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "u1", "notes.txt"))

	names, err = store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocal_ListEmptyForUnknownUser(t *testing.T) {
	store := NewLocal(t.TempDir())

	names, err := store.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocal_UsersAreIsolated(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "u1", "a.txt", strings.NewReader("a")))
	require.NoError(t, store.Upload(ctx, "u2", "b.txt", strings.NewReader("b")))

	names, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)
}

func TestLocal_MissingFileErrors(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	_, err := store.Download(ctx, "u1", "ghost.txt")
	assert.ErrorIs(t, err, entity.ErrFileNotFound)

	err = store.Delete(ctx, "u1", "ghost.txt")
	assert.ErrorIs(t, err, entity.ErrFileNotFound)
}

func TestLocal_UploadStripsPathComponents(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "u1", "../../escape.txt", strings.NewReader("x")))

	names, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.txt"}, names)
}
