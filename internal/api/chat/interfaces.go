package chat

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
	chatuc "github.com/futig/rag-gateway/internal/usecase/chat"
)

type ChatUsecase interface {
	StreamChat(ctx context.Context, userID, message string, history []entity.ChatMessage) (<-chan chatuc.Item, error)
	ChatRequest(ctx context.Context, userID, message string, history []entity.ChatMessage) (*entity.ChatResult, error)
}
