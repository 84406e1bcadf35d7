package pubsub

import (
	"sync"
)

// Stream broadcasts values with last-value-wins delivery: if a subscriber has
// not consumed the previous value, it is replaced rather than queued. New
// subscribers immediately receive the latest published value, if any.
type Stream[T any] struct {
	mu      sync.Mutex
	subs    map[int]chan T
	nextId  int
	last    T
	hasLast bool
	closed  bool
}

func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a subscriber channel. The latest value published before
// subscribing is delivered immediately.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	if s.closed {
		return ch, func() {}
	}

	if s.hasLast {
		ch <- s.last
	}

	id := s.nextId
	s.nextId++
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// Publish delivers v to every subscriber, replacing any unconsumed value.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.last = v
	s.hasLast = true

	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// Drop the stale value, keep the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Latest returns the most recently published value.
func (s *Stream[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Close drops all subscribers and makes further Publish calls no-ops.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.subs = nil
}
