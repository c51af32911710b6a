package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCS_ObjectKey(t *testing.T) {
	g := &GCS{bucket: "bucket", prefix: "uploads"}

	assert.Equal(t, "uploads/u1/notes.txt", g.objectKey("u1", "notes.txt"))
	assert.Equal(t, "uploads/u1/escape.txt", g.objectKey("u1", "../escape.txt"))

	noPrefix := &GCS{bucket: "bucket"}
	assert.Equal(t, "u1/notes.txt", noPrefix.objectKey("u1", "notes.txt"))
}

func TestGCS_WithScope(t *testing.T) {
	g := &GCS{bucket: "default-bucket", prefix: "uploads"}

	scoped, ok := g.WithScope("other-bucket", "archive").(*GCS)
	require.True(t, ok)
	assert.Equal(t, "other-bucket", scoped.bucket)
	assert.Equal(t, "archive", scoped.prefix)

	// Empty overrides keep the configured values.
	kept, ok := g.WithScope("", "").(*GCS)
	require.True(t, ok)
	assert.Equal(t, "default-bucket", kept.bucket)
	assert.Equal(t, "uploads", kept.prefix)

	// The original adapter is untouched.
	assert.Equal(t, "default-bucket", g.bucket)
	assert.Equal(t, "uploads", g.prefix)
}
