package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// Subscriber is a connected listener handle.
type Subscriber interface {
	ID() string
	Send(message []byte) error
}

// Hub fans messages out to subscribers on a best-effort basis.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	logger      *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subscribers: make(map[string]Subscriber), logger: logger}
}

// Subscribe adds s to the listener set. A subscriber with the same id is replaced.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	h.subscribers[s.ID()] = s
	h.mu.Unlock()
	h.logger.Debug("listener subscribed", zap.String("listener_id", s.ID()))
}

// Unsubscribe removes the listener with the given id, if present.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	delete(h.subscribers, id)
	h.mu.Unlock()
}

// Len returns the number of live listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast delivers message to every listener and returns how many sends
// succeeded. Listeners whose send fails are pruned; the caller never sees
// their errors.
func (h *Hub) Broadcast(message []byte) int {
	h.mu.RLock()
	snapshot := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	delivered := 0
	var failed []Subscriber
	for _, s := range snapshot {
		if err := s.Send(message); err != nil {
			h.logger.Debug("pruning listener", zap.String("listener_id", s.ID()), zap.Error(err))
			failed = append(failed, s)
			continue
		}
		delivered++
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, s := range failed {
			// only drop the handle that failed, not a newer one under the same id
			if current, ok := h.subscribers[s.ID()]; ok && current == s {
				delete(h.subscribers, s.ID())
			}
		}
		h.mu.Unlock()
	}
	return delivered
}
