package chat

import (
	"context"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRetrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		SystemPrompt: "You are a helpful assistant.",
		TopK:         3,
		TopKComplex:  30,
		ChunkSize:    1024,
		ChunkOverlap: 128,
	}
}

func newTestFactory(index *fakeIndex, tools []Tool) *EngineFactory {
	return NewEngineFactory(&fakeLLM{}, index, tools, testRetrievalConfig(), time.Minute, zap.NewNop())
}

func TestForUser_MissingIndexFails(t *testing.T) {
	factory := newTestFactory(&fakeIndex{exists: false}, nil)

	_, err := factory.ForUser(context.Background(), "u1", 3)
	require.ErrorIs(t, err, entity.ErrIndexNotFound)
}

func TestForUser_SelectsContextEngineWithoutTools(t *testing.T) {
	factory := newTestFactory(&fakeIndex{exists: true}, nil)

	engine, err := factory.ForUser(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.IsType(t, &contextEngine{}, engine)
}

func TestForUser_SelectsAgentEngineWithTools(t *testing.T) {
	tools := []Tool{&urlReaderTool{}}
	factory := newTestFactory(&fakeIndex{exists: true}, tools)

	engine, err := factory.ForUser(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.IsType(t, &agentEngine{}, engine)
}

func TestForUser_CachesPerUserAndTopK(t *testing.T) {
	factory := newTestFactory(&fakeIndex{exists: true}, nil)
	ctx := context.Background()

	first, err := factory.ForUser(ctx, "u1", 3)
	require.NoError(t, err)
	second, err := factory.ForUser(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Same(t, first, second)

	wider, err := factory.ForUser(ctx, "u1", 30)
	require.NoError(t, err)
	assert.NotSame(t, first, wider)

	other, err := factory.ForUser(ctx, "u2", 3)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestInvalidate_DropsOnlyTheUsersEngines(t *testing.T) {
	factory := newTestFactory(&fakeIndex{exists: true}, nil)
	ctx := context.Background()

	u1, err := factory.ForUser(ctx, "u1", 3)
	require.NoError(t, err)
	u2, err := factory.ForUser(ctx, "u2", 3)
	require.NoError(t, err)

	factory.Invalidate("u1")

	rebuilt, err := factory.ForUser(ctx, "u1", 3)
	require.NoError(t, err)
	assert.NotSame(t, u1, rebuilt)

	kept, err := factory.ForUser(ctx, "u2", 3)
	require.NoError(t, err)
	assert.Same(t, u2, kept)
}
