package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// EngineFactory builds the conversational engine for a user: the plain
// context engine when no tools are configured, the agent engine
// otherwise. Constructed engines are cached per (user, topK) and
// invalidated when the user's files change.
type EngineFactory struct {
	llm    LLMClient
	index  IndexProvider
	tools  []Tool
	cfg    config.RetrievalConfig
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewEngineFactory(
	llm LLMClient,
	index IndexProvider,
	tools []Tool,
	cfg config.RetrievalConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *EngineFactory {
	return &EngineFactory{
		llm:    llm,
		index:  index,
		tools:  tools,
		cfg:    cfg,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// ForUser returns the engine bound to the user at the given retrieval
// breadth. Fails with entity.ErrIndexNotFound when the user has no
// indexed content.
func (f *EngineFactory) ForUser(ctx context.Context, userID string, topK int) (Engine, error) {
	key := cacheKey(userID, topK)
	if cached, ok := f.cache.Get(key); ok {
		return cached.(Engine), nil
	}

	exists, err := f.index.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if !exists {
		return nil, entity.ErrIndexNotFound
	}

	var engine Engine
	if len(f.tools) == 0 {
		engine = &contextEngine{
			llm:          f.llm,
			index:        f.index,
			userID:       userID,
			topK:         topK,
			systemPrompt: f.cfg.SystemPrompt,
		}
	} else {
		engine = &agentEngine{
			llm:          f.llm,
			index:        f.index,
			tools:        f.tools,
			userID:       userID,
			topK:         topK,
			systemPrompt: f.cfg.SystemPrompt,
		}
	}

	f.cache.Set(key, engine, gocache.DefaultExpiration)
	return engine, nil
}

// Invalidate drops every cached engine of the user. Called after file
// uploads and deletions so stale retrieval settings don't survive an
// index rebuild.
func (f *EngineFactory) Invalidate(userID string) {
	prefix := userID + ":"
	for key := range f.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			f.cache.Delete(key)
		}
	}
}

func cacheKey(userID string, topK int) string {
	return fmt.Sprintf("%s:%d", userID, topK)
}

func parseQueryArgument(arguments string) (string, error) {
	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		return "", fmt.Errorf("parse tool arguments: %w", err)
	}
	if parsed.Query == "" {
		return "", fmt.Errorf("tool arguments missing query")
	}
	return parsed.Query, nil
}
