package index

import (
	"context"
	"sync"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockProvider is an in-memory index for local development and tests.
type MockProvider struct {
	logger *zap.Logger

	mu    sync.Mutex
	users map[string][]entity.SourceNode
}

func NewMockProvider(logger *zap.Logger) *MockProvider {
	return &MockProvider{
		logger: logger,
		users:  make(map[string][]entity.SourceNode),
	}
}

// Seed replaces the stored nodes for a user. Test helper.
func (m *MockProvider) Seed(userID string, nodes []entity.SourceNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = nodes
}

func (m *MockProvider) IndexAll(ctx context.Context, userID string) error {
	ctxzap.Info(ctx, "[MOCK] index rebuild", zap.String("user_id", userID))

	m.mu.Lock()
	defer m.mu.Unlock()
	score := 0.9
	m.users[userID] = []entity.SourceNode{
		{ID: "mock-node-1", Metadata: map[string]any{"file_name": "mock.txt"}, Score: &score, Text: "Mock indexed content."},
	}
	return nil
}

func (m *MockProvider) Reset(ctx context.Context, userID string) error {
	ctxzap.Info(ctx, "[MOCK] index reset", zap.String("user_id", userID))

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

func (m *MockProvider) Exists(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users[userID]) > 0, nil
}

func (m *MockProvider) Query(ctx context.Context, userID, query string, topK int) ([]entity.SourceNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodes := m.users[userID]
	if len(nodes) > topK {
		nodes = nodes[:topK]
	}
	return nodes, nil
}
