package chat

import (
	"context"
	"sync"

	"github.com/futig/rag-gateway/internal/entity"
)

// fakeLLM scripts the LLM client for engine and advisor tests.
type fakeLLM struct {
	mu sync.Mutex

	completeAnswer string
	completeErr    error
	lastMessages   []entity.ChatMessage

	jsonAnswer string
	jsonErr    error

	streamTokens []string
	streamErr    error

	// toolTurns is consumed one element per CompleteWithTools call.
	toolTurns    []entity.CompletionMessage
	toolErr      error
	toolMessages [][]entity.CompletionMessage
}

func (f *fakeLLM) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMessages = messages
	return f.completeAnswer, f.completeErr
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return f.jsonAnswer, f.jsonErr
}

func (f *fakeLLM) StreamComplete(ctx context.Context, messages []entity.ChatMessage) (<-chan entity.TokenChunk, error) {
	f.mu.Lock()
	f.lastMessages = messages
	f.mu.Unlock()

	out := make(chan entity.TokenChunk)
	go func() {
		defer close(out)
		for _, tok := range f.streamTokens {
			select {
			case out <- entity.TokenChunk{Content: tok}:
			case <-ctx.Done():
				return
			}
		}
		if f.streamErr != nil {
			select {
			case out <- entity.TokenChunk{Err: f.streamErr}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (f *fakeLLM) CompleteWithTools(
	ctx context.Context, messages []entity.CompletionMessage, tools []entity.ToolSpec,
) (*entity.CompletionMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.toolErr != nil {
		return nil, f.toolErr
	}
	snapshot := make([]entity.CompletionMessage, len(messages))
	copy(snapshot, messages)
	f.toolMessages = append(f.toolMessages, snapshot)

	turn := f.toolTurns[0]
	f.toolTurns = f.toolTurns[1:]
	return &turn, nil
}

// fakeIndex scripts the retrieval side.
type fakeIndex struct {
	mu sync.Mutex

	exists    bool
	existsErr error
	nodes     []entity.SourceNode
	queryErr  error

	queries []string
	topKs   []int
}

func (f *fakeIndex) Exists(ctx context.Context, userID string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeIndex) Query(ctx context.Context, userID, query string, topK int) ([]entity.SourceNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.topKs = append(f.topKs, topK)
	return f.nodes, f.queryErr
}

func scoreOf(v float64) *float64 {
	return &v
}
