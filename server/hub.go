package server

import (
	"sync"

	"github.com/frantoso/jasm-debugger/session"
)

// Update notifies subscribers that a session's document changed.
type Update struct {
	Key session.Key
}

// Hub fans updates out to subscribers. Sends never block: a subscriber that
// cannot keep up misses updates instead of stalling the command stream.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Update]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Update]struct{})}
}

// Subscribe registers a new subscriber channel. The returned cancel func
// unregisters and closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an update to every subscriber that has buffer room.
func (h *Hub) Publish(update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
