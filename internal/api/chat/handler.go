package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	chatuc "github.com/futig/rag-gateway/internal/usecase/chat"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

type chatRequest struct {
	Messages []entity.ChatMessage `json:"messages"`
}

// Chat handles POST /chat
//
// The response is a chunked stream of protocol frames: one text frame
// per generated token, data frames for generation events, and a final
// sources frame after the answer completes. Once streaming has begun
// an error can only truncate the stream, not change the status code.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	message, history, err := h.parseMessages(ctx, w, r)
	if err != nil {
		return
	}

	items, err := h.usecase.StreamChat(ctx, userID, message, history)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	sw, err := newStreamWriter(w)
	if err != nil {
		ctxzap.Error(ctx, "streaming unsupported", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	for item := range items {
		if item.Err != nil {
			ctxzap.Error(ctx, "stream failed", zap.Error(item.Err))
			return
		}

		var werr error
		switch item.Kind {
		case chatuc.KindToken:
			werr = sw.WriteToken(item.Token)
		case chatuc.KindEvent:
			werr = sw.WriteEvent(item.Event)
		case chatuc.KindSources:
			werr = sw.WriteSources(item.Nodes)
		}
		if werr != nil {
			ctxzap.Warn(ctx, "client write failed", zap.Error(werr))
			return
		}
	}

	ctxzap.Info(ctx, "chat stream completed")
}

// ChatRequest handles POST /chat/request
func (h *Handler) ChatRequest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ChatRequest")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	message, history, err := h.parseMessages(ctx, w, r)
	if err != nil {
		return
	}

	result, err := h.usecase.ChatRequest(ctx, userID, message, history)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "chat request completed")
	response.Success(w, result)
}

// parseMessages decodes and validates the request body. On failure the
// error response has already been written.
func (h *Handler) parseMessages(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, []entity.ChatMessage, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return "", nil, err
	}

	message, history, err := validator.ValidateMessages(req.Messages)
	if err != nil {
		ctxzap.Warn(ctx, "invalid messages", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return "", nil, err
	}

	return message, history, nil
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "chat usecase failed", zap.Error(err))

	if errors.Is(err, entity.ErrIndexNotFound) {
		response.Error(w, http.StatusNotFound, "no index found for user, upload a file first")
		return
	}
	response.Error(w, http.StatusInternalServerError, "internal server error")
}
