package pubsub

import (
	"sync"
)

// Signal broadcasts "something changed" notifications to subscribers.
// Delivery is coalescing: each subscriber channel is buffered to one pending
// notification, so a slow consumer sees at most one queued signal and the
// publisher never blocks. Consumers must treat a received signal as a
// "re-read the current snapshot" instruction, not as carrying a value.
type Signal struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextId int
	closed bool
}

func NewSignal() *Signal {
	return &Signal{subs: make(map[int]chan struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func removes the
// subscription; it is safe to call more than once.
func (s *Signal) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		return ch, func() {}
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

// Emit notifies every subscriber without blocking. A notification already
// pending on a subscriber channel coalesces with this one.
func (s *Signal) Emit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close drops all subscribers and makes further Emit calls no-ops. Used on
// adapter teardown to guarantee no late notifications.
func (s *Signal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.subs = nil
}
