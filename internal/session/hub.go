// Package session holds the process-wide session context: sign-in and
// sign-out events fan out to per-user subscribers.
package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/huson-app/huson/internal/core/domain"
)

const subscriberBuffer = 16

type subscriber struct {
	id     uint64
	userID string
	ch     chan domain.SessionEvent
}

// Hub is safe for concurrent use. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]subscriber
	nextID      atomic.Uint64
	dropped     atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint64]subscriber)}
}

// Subscribe registers interest in one user's events. An empty userID
// receives every event. The returned func unsubscribes and closes the
// channel; calling it more than once is fine.
func (h *Hub) Subscribe(userID string) (<-chan domain.SessionEvent, func()) {
	sub := subscriber{
		id:     h.nextID.Add(1),
		userID: userID,
		ch:     make(chan domain.SessionEvent, subscriberBuffer),
	}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.unsubscribe(sub.id) })
	}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(sub.ch)
	}
}

func (h *Hub) Publish(event domain.SessionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		if sub.userID != "" && sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
			slog.Warn("session_event_dropped", "subscriber", sub.id, "user_id", event.UserID, "type", event.Type)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
