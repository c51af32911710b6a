package chat

import (
	"context"
	"sync"

	"github.com/futig/rag-gateway/internal/entity"
)

// ItemKind tags one element of the composed output stream.
type ItemKind int

const (
	KindToken ItemKind = iota
	KindEvent
	KindSources
)

// Item is one element of the composed stream. Exactly one of the payload
// fields is set according to Kind; Err marks a failed stream and is
// always the last item.
type Item struct {
	Kind  ItemKind
	Token string
	Event entity.Event
	Nodes []entity.SourceNode
	Err   error
}

// StreamingResponse is a started generation: a token stream, an event
// stream, and the source nodes of the completed response. Sources()
// must only be called after the token channel has closed.
type StreamingResponse struct {
	Tokens <-chan entity.TokenChunk
	Events *EventStream

	mu    sync.Mutex
	nodes []entity.SourceNode
}

func (r *StreamingResponse) setSources(nodes []entity.SourceNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = nodes
}

func (r *StreamingResponse) Sources() []entity.SourceNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodes
}

// Compose merges the token stream (primary) and the event stream
// (secondary) of a started generation into one ordered output channel.
//
// Tokens keep their original order; events are interleaved in arrival
// order. When the token stream ends the event stream is closed too, so
// the composed stream never hangs on a dangling event producer. The
// output is unbuffered: items are handed over one at a time and ctx is
// honored before every yield, so nothing more is produced after the
// client disconnects. On the non-cancelled completion path exactly one
// terminal sources item is appended; a token-stream error terminates
// the output with an Err item instead.
func Compose(ctx context.Context, resp *StreamingResponse) <-chan Item {
	out := make(chan Item)
	merged := make(chan Item)

	var wg sync.WaitGroup
	wg.Add(2)

	// Primary producer: tokens. Its end closes the event stream.
	go func() {
		defer wg.Done()
		defer resp.Events.Close()

		for chunk := range resp.Tokens {
			item := Item{Kind: KindToken, Token: chunk.Content}
			if chunk.Err != nil {
				item = Item{Err: chunk.Err}
			}
			select {
			case merged <- item:
			case <-ctx.Done():
				return
			}
			if chunk.Err != nil {
				return
			}
		}
	}()

	// Secondary producer: events, until the close signal.
	go func() {
		defer wg.Done()

		for {
			select {
			case ev := <-resp.Events.C():
				select {
				case merged <- Item{Kind: KindEvent, Event: ev}:
				case <-ctx.Done():
					return
				}
			case <-resp.Events.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(merged)
	}()

	go func() {
		defer close(out)

		for item := range merged {
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
			if item.Err != nil {
				return
			}
		}

		// Terminal sources item, only while the client is still there.
		if ctx.Err() != nil {
			return
		}
		select {
		case out <- Item{Kind: KindSources, Nodes: resp.Sources()}:
		case <-ctx.Done():
		}
	}()

	return out
}
