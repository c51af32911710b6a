package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, items <-chan Item) []Item {
	t.Helper()

	var out []Item
	timeout := time.After(5 * time.Second)
	for {
		select {
		case item, ok := <-items:
			if !ok {
				return out
			}
			out = append(out, item)
		case <-timeout:
			t.Fatal("timed out waiting for composed stream to close")
		}
	}
}

func streamingResponse(tokens []entity.TokenChunk) *StreamingResponse {
	ch := make(chan entity.TokenChunk)
	go func() {
		defer close(ch)
		for _, tok := range tokens {
			ch <- tok
		}
	}()
	return &StreamingResponse{Tokens: ch, Events: NewEventStream()}
}

func TestCompose_TokenOrderPreserved(t *testing.T) {
	resp := streamingResponse([]entity.TokenChunk{
		{Content: "The"}, {Content: " answer"}, {Content: " is"}, {Content: " 42"},
	})
	resp.setSources([]entity.SourceNode{{ID: "n1", Text: "doc"}})

	items := collect(t, Compose(context.Background(), resp))

	var tokens []string
	for _, item := range items {
		if item.Kind == KindToken {
			tokens = append(tokens, item.Token)
		}
	}
	assert.Equal(t, []string{"The", " answer", " is", " 42"}, tokens)

	last := items[len(items)-1]
	require.Equal(t, KindSources, last.Kind)
	require.Len(t, last.Nodes, 1)
	assert.Equal(t, "n1", last.Nodes[0].ID)
}

func TestCompose_EventsInterleavedBeforeSources(t *testing.T) {
	tokens := make(chan entity.TokenChunk)
	events := NewEventStream()
	resp := &StreamingResponse{Tokens: tokens, Events: events}

	go func() {
		defer close(tokens)
		events.Emit(entity.Event{Type: "retrieve"})
		events.Emit(entity.Event{Type: "retrieve_result"})
		tokens <- entity.TokenChunk{Content: "hello"}
	}()

	items := collect(t, Compose(context.Background(), resp))

	var kinds []ItemKind
	for _, item := range items {
		kinds = append(kinds, item.Kind)
	}

	// Events and tokens interleave in arrival order, but the sources
	// item is always last and appears exactly once.
	sourcesSeen := 0
	for i, kind := range kinds {
		if kind == KindSources {
			sourcesSeen++
			assert.Equal(t, len(kinds)-1, i, "sources item must be terminal")
		}
	}
	assert.Equal(t, 1, sourcesSeen)

	var eventTypes []string
	for _, item := range items {
		if item.Kind == KindEvent {
			eventTypes = append(eventTypes, item.Event.Type)
		}
	}
	assert.Equal(t, []string{"retrieve", "retrieve_result"}, eventTypes)
}

func TestCompose_CancellationStopsWithoutSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tokens := make(chan entity.TokenChunk)
	resp := &StreamingResponse{Tokens: tokens, Events: NewEventStream()}

	// Endless producer; only cancellation can stop the stream.
	go func() {
		defer close(tokens)
		for {
			select {
			case tokens <- entity.TokenChunk{Content: "x"}:
			case <-ctx.Done():
				return
			}
		}
	}()

	items := Compose(ctx, resp)

	for i := 0; i < 3; i++ {
		select {
		case <-items:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for items")
		}
	}
	cancel()

	rest := collect(t, items)
	for _, item := range rest {
		assert.NotEqual(t, KindSources, item.Kind, "no sources item after cancellation")
	}
}

func TestCompose_TokenErrorTruncatesStream(t *testing.T) {
	streamErr := errors.New("upstream reset")
	resp := streamingResponse([]entity.TokenChunk{
		{Content: "partial"},
		{Err: streamErr},
	})
	resp.setSources([]entity.SourceNode{{ID: "n1"}})

	items := collect(t, Compose(context.Background(), resp))

	require.NotEmpty(t, items)
	last := items[len(items)-1]
	require.ErrorIs(t, last.Err, streamErr)

	for _, item := range items {
		assert.NotEqual(t, KindSources, item.Kind, "no sources item after a stream error")
	}
}

func TestCompose_ReleasesBlockedEventProducer(t *testing.T) {
	tokens := make(chan entity.TokenChunk)
	events := NewEventStream()
	resp := &StreamingResponse{Tokens: tokens, Events: events}
	close(tokens)

	items := collect(t, Compose(context.Background(), resp))
	require.Len(t, items, 1)
	assert.Equal(t, KindSources, items[0].Kind)

	// After composition ends, Emit must not block producers forever.
	done := make(chan struct{})
	go func() {
		events.Emit(entity.Event{Type: "late"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Emit blocked after stream completion")
	}
}
