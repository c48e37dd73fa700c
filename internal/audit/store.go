package audit

import (
	"context"
	"sync"
)

// Sink receives events one at a time. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink that can also be queried for recent events.
type Store interface {
	Sink
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// InMemoryStore keeps the most recent events in a bounded ring so the
// recent-events endpoint stays cheap regardless of uptime.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	next   int
	filled bool
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryStore{events: make([]Event, capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = event
	s.next++
	if s.next == len(s.events) {
		s.next = 0
		s.filled = true
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.filled {
		size = len(s.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := s.next - i
		if idx < 0 {
			idx += len(s.events)
		}
		out = append(out, s.events[idx])
	}
	return out, nil
}

// MultiSink fans one event out to several sinks. The first failure stops
// the fan-out and is returned.
type MultiSink []Sink

func (m MultiSink) Append(ctx context.Context, event Event) error {
	for _, sink := range m {
		if err := sink.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
