// Package stream fans raw controller envelopes out to event stream
// subscribers (SSE clients, the message bus publisher).
package stream

import (
	"sync"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing events rather than blocking the
// controller's emission path.
const subscriberBuffer = 64

// Hub distributes envelopes to any number of subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan contract.RawEventEnvelope
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan contract.RawEventEnvelope)}
}

// Publish delivers the envelope to all current subscribers. Slow subscribers
// are skipped, never blocked on.
func (h *Hub) Publish(envelope contract.RawEventEnvelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- envelope:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called to release it.
func (h *Hub) Subscribe() (<-chan contract.RawEventEnvelope, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan contract.RawEventEnvelope, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
