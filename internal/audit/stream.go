package audit

import (
	"context"
	"sync"
)

// Stream fan-outs appended audit records to live subscribers (the SSE
// endpoint). Slow subscribers drop events rather than block the recorder.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Record
	next int
}

// NewStream initialises an empty stream.
func NewStream() *Stream {
	return &Stream{subs: make(map[int]chan Record)}
}

// Subscribe registers a subscriber and returns the channel records arrive on.
// The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Record {
	ch := make(chan Record, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the record to all subscribers.
func (s *Stream) Publish(rec Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- rec:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
