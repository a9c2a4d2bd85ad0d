package app

import (
	"context"
	"sync"
)

// Aggregate names one of the persisted aggregates.
type Aggregate string

const (
	AggregateLogs     Aggregate = "logs"
	AggregateArchives Aggregate = "archives"
	AggregateAlerts   Aggregate = "alerts"
)

// Event reports that an aggregate changed. External is true when the
// change came from another execution context and was reloaded.
type Event struct {
	Aggregate Aggregate `json:"aggregate"`
	External  bool      `json:"external"`
}

const watchBuffer = 16

// Watch streams change events until ctx is done or the Service is closed.
// A consumer that falls behind misses events rather than blocking the
// engine.
func (s *Service) Watch(ctx context.Context) <-chan Event {
	ch, cancel := s.events.subscribe()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-s.events.done:
		}
	}()
	return ch
}

type broadcaster struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
	done   chan struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		subs: make(map[int]chan Event),
		done: make(chan struct{}),
	}
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, watchBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *broadcaster) emit(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	close(b.done)
}
