package chat

import (
	"sync"

	"github.com/futig/rag-gateway/internal/entity"
)

// eventBuffer bounds how many events can pile up before a consumer
// attaches. Emission blocks once the buffer is full.
const eventBuffer = 16

// EventStream carries out-of-band events (retrieval progress, tool
// calls) produced during one generation. It is closed by the composer
// when the token stream ends, releasing any blocked producer.
type EventStream struct {
	ch        chan entity.Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewEventStream() *EventStream {
	return &EventStream{
		ch:   make(chan entity.Event, eventBuffer),
		done: make(chan struct{}),
	}
}

// Emit delivers an event to the consumer. It returns without delivering
// once the stream has been closed.
func (s *EventStream) Emit(ev entity.Event) {
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}

// C is the consumer side of the stream.
func (s *EventStream) C() <-chan entity.Event {
	return s.ch
}

// Done is closed when no further events will be consumed.
func (s *EventStream) Done() <-chan struct{} {
	return s.done
}

// Close signals producers and consumers that the stream is finished.
// Safe to call multiple times.
func (s *EventStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
