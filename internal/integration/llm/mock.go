package llm

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a canned LLM implementation for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("message_count", len(messages)))
	return "This is a mock answer generated without contacting the model provider.", nil
}

func (m *MockConnector) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] json completion")
	return `{"topk": 3}`, nil
}

func (m *MockConnector) StreamComplete(ctx context.Context, messages []entity.ChatMessage) (<-chan entity.TokenChunk, error) {
	ctxzap.Info(ctx, "[MOCK] streaming completion", zap.Int("message_count", len(messages)))

	out := make(chan entity.TokenChunk)
	go func() {
		defer close(out)
		for _, token := range []string{"This ", "is ", "a ", "mock ", "stream."} {
			select {
			case out <- entity.TokenChunk{Content: token}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *MockConnector) CompleteWithTools(
	ctx context.Context, messages []entity.CompletionMessage, tools []entity.ToolSpec,
) (*entity.CompletionMessage, error) {
	ctxzap.Info(ctx, "[MOCK] tool completion", zap.Int("tool_count", len(tools)))
	return &entity.CompletionMessage{
		Role:    entity.RoleAssistant,
		Content: "This is a mock agent answer.",
	}, nil
}

func (m *MockConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embeddings", zap.Int("text_count", len(texts)))

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}
