package security

import (
	"sync"

	"go.uber.org/zap"

	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

const subscriberBuffer = 16

type subscriber struct {
	sessionID string
	ch        chan security.Event
}

// Hub fans newly recorded events out to live listeners. A slow listener
// loses events rather than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscriber
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[uint64]subscriber),
		logger: logger,
	}
}

// Subscribe registers a listener. An empty sessionID receives every event.
// The returned func unsubscribes and closes the channel; it is idempotent.
func (h *Hub) Subscribe(sessionID string) (<-chan security.Event, func()) {
	ch := make(chan security.Event, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscriber{sessionID: sessionID, ch: ch}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers event to matching listeners without blocking.
func (h *Hub) Publish(event security.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.sessionID != "" && sub.sessionID != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.logger.Debug("dropping security event for slow subscriber",
				zap.String("session_id", event.SessionID),
				zap.Int64("event_id", event.ID))
		}
	}
}

// Subscribers reports the number of live listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
