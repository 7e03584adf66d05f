package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

const defaultBuffer = 16

type subscription struct {
	ch chan model.OrderEvent
}

// Hub fans order events out to per-user subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int64]map[*subscription]struct{}
	buffer  int
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewHub creates a hub with the default per-subscriber buffer.
func NewHub(logger *slog.Logger) *Hub {
	return NewHubWithBuffer(defaultBuffer, logger)
}

// NewHubWithBuffer creates a hub whose subscribers buffer up to size events.
func NewHubWithBuffer(size int, logger *slog.Logger) *Hub {
	if size < 1 {
		size = 1
	}
	return &Hub{subs: make(map[int64]map[*subscription]struct{}), buffer: size, logger: logger}
}

// Subscribe registers a listener for the user's orders. The returned cancel
// func unregisters it and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(userID int64) (<-chan model.OrderEvent, func()) {
	sub := &subscription{ch: make(chan model.OrderEvent, h.buffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers event to every subscriber of event.UserID.
func (h *Hub) Publish(event model.OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.UserID] {
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
			h.logger.Debug("order event dropped for slow subscriber",
				slog.String("order_id", event.OrderID),
				slog.Int64("user_id", event.UserID),
			)
		}
	}
}

// Subscribers returns the number of live subscriptions for the user.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Dropped returns how many events were discarded because a buffer was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
