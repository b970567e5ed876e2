package sse

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
)

const bufferSize = 16

// Hub fans messages out to in-process subscribers grouped by room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan notification.Message]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[chan notification.Message]struct{}),
	}
}

// Subscribe registers one channel in every given room and returns it with
// its cleanup function.
func (h *Hub) Subscribe(rooms ...string) (<-chan notification.Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan notification.Message, bufferSize)
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[chan notification.Message]struct{})
		}
		h.rooms[room][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, room := range rooms {
				delete(h.rooms[room], ch)
				if len(h.rooms[room]) == 0 {
					delete(h.rooms, room)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Emit implements notification.Notifier. Slow subscribers drop messages
// instead of blocking the publisher.
func (h *Hub) Emit(_ context.Context, msg notification.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.rooms[msg.Room] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// SubscriberCount returns the number of active subscribers in a room
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}
