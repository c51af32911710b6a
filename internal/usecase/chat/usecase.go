package chat

import (
	"context"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"go.uber.org/zap"
)

// Usecase drives the chat endpoints: it resolves the engine for the
// user, starts generation, and composes the streamed output.
type Usecase struct {
	factory *EngineFactory
	llm     LLMClient
	cfg     config.RetrievalConfig
	logger  *zap.Logger
}

func NewUsecase(
	factory *EngineFactory,
	llm LLMClient,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		factory: factory,
		llm:     llm,
		cfg:     cfg,
		logger:  logger,
	}
}

// StreamChat starts a streaming exchange at the default retrieval
// breadth and returns the composed output stream. The stream obeys ctx:
// it stops without further items when the client disconnects.
func (uc *Usecase) StreamChat(
	ctx context.Context, userID, message string, history []entity.ChatMessage,
) (<-chan Item, error) {
	engine, err := uc.factory.ForUser(ctx, userID, uc.cfg.TopK)
	if err != nil {
		return nil, err
	}

	resp, err := engine.StreamChat(ctx, message, history)
	if err != nil {
		return nil, err
	}

	return Compose(ctx, resp), nil
}

// ChatRequest runs a synchronous exchange. The retrieval breadth is
// chosen per query by the top-k advisor.
func (uc *Usecase) ChatRequest(
	ctx context.Context, userID, message string, history []entity.ChatMessage,
) (*entity.ChatResult, error) {
	topK := uc.determineTopK(ctx, message)

	engine, err := uc.factory.ForUser(ctx, userID, topK)
	if err != nil {
		return nil, err
	}

	return engine.Chat(ctx, message, history)
}
