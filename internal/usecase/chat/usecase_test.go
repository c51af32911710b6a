package chat

import (
	"context"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newChatUsecase(llm *fakeLLM, index *fakeIndex) *Usecase {
	cfg := testRetrievalConfig()
	factory := NewEngineFactory(llm, index, nil, cfg, time.Minute, zap.NewNop())
	return NewUsecase(factory, llm, cfg, zap.NewNop())
}

func TestChatRequest_UsesAdvisorTopK(t *testing.T) {
	index := &fakeIndex{
		exists: true,
		nodes:  []entity.SourceNode{{ID: "n1", Text: "doc"}},
	}
	llm := &fakeLLM{
		jsonAnswer:     `{"topk": 30}`,
		completeAnswer: "answer",
	}
	uc := newChatUsecase(llm, index)

	result, err := uc.ChatRequest(context.Background(), "u1", "a complex question", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", result.Result.Content)

	require.Len(t, index.topKs, 1)
	assert.Equal(t, 30, index.topKs[0])
}

func TestStreamChat_UsesDefaultTopK(t *testing.T) {
	index := &fakeIndex{exists: true}
	llm := &fakeLLM{streamTokens: []string{"a"}}
	uc := newChatUsecase(llm, index)

	items, err := uc.StreamChat(context.Background(), "u1", "question", nil)
	require.NoError(t, err)
	collect(t, items)

	require.Len(t, index.topKs, 1)
	assert.Equal(t, 3, index.topKs[0], "streaming always retrieves at the default breadth")
}

func TestStreamChat_MissingIndex(t *testing.T) {
	uc := newChatUsecase(&fakeLLM{}, &fakeIndex{exists: false})

	_, err := uc.StreamChat(context.Background(), "u1", "question", nil)
	require.ErrorIs(t, err, entity.ErrIndexNotFound)
}
