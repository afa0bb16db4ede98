// Package broadcast fans state snapshots out to subscribers. Subscribers
// only ever care about the latest state, so a slow reader gets the newest
// snapshot instead of a backlog.
package broadcast

import "sync"

// Hub delivers values of type T to any number of subscribers.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
	closed bool
}

// New creates an empty hub.
func New[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]chan T)}
}

// Subscribe returns a channel that receives every published value (or the
// latest one if the reader falls behind) and a cancel func that closes it.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	subID := h.nextID
	h.nextID++
	h.subs[subID] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[subID]; ok {
				delete(h.subs, subID)
				close(c)
			}
		})
	}
}

// Publish never blocks.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
			// Replace the stale value.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for subID, ch := range h.subs {
		delete(h.subs, subID)
		close(ch)
	}
}
