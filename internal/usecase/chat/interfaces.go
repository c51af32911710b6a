package chat

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

// LLMClient is the generation side of the chat engines.
type LLMClient interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
	StreamComplete(ctx context.Context, messages []entity.ChatMessage) (<-chan entity.TokenChunk, error)
	CompleteWithTools(ctx context.Context, messages []entity.CompletionMessage, tools []entity.ToolSpec) (*entity.CompletionMessage, error)
}

// IndexProvider is the retrieval side of the chat engines.
type IndexProvider interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Query(ctx context.Context, userID, query string, topK int) ([]entity.SourceNode, error)
}

// Tool is an auxiliary capability exposed to the agent engine next to
// the built-in retrieval tool.
type Tool interface {
	Spec() entity.ToolSpec
	Call(ctx context.Context, arguments string) (string, error)
}
