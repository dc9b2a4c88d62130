package store

import (
	"sync"

	"github.com/lasttodo/lasttodo/db"
)

// hub fans out collection snapshots to per-user subscribers.
// Snapshots are always the full current collection, never deltas.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []db.Todo]struct{}
}

func newHub() *hub {
	return &hub{
		subscribers: make(map[string]map[chan []db.Todo]struct{}),
	}
}

// subscribe creates a new snapshot channel for a user.
// Returns the channel and an unsubscribe function.
func (h *hub) subscribe(userID string) (<-chan []db.Todo, func()) {
	ch := make(chan []db.Todo, 10)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan []db.Todo]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		// Only close if the channel is still in the subscribers map
		if subs, ok := h.subscribers[userID]; ok {
			if _, exists := subs[ch]; exists {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
	}

	return ch, unsubscribe
}

// publish delivers a snapshot to every subscriber of a user
func (h *hub) publish(userID string, items []db.Todo) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- items:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// shutdown closes all subscriber channels
func (h *hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
	}
	h.subscribers = make(map[string]map[chan []db.Todo]struct{})
}

// subscriberCount returns the number of active subscribers for a user
func (h *hub) subscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
