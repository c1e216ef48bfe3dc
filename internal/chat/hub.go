package chat

import (
	"sync"

	"golang.org/x/net/websocket"
)

// Hub fans appended messages out to the WebSocket connections subscribed to
// each room. Sends are fire-and-forget; a dead connection drops its messages
// until the read loop notices and unsubscribes.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]struct{})}
}

// Subscribe registers a connection for a room.
func (h *Hub) Subscribe(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*websocket.Conn]struct{})
		h.rooms[roomID] = subs
	}
	subs[conn] = struct{}{}
}

// Unsubscribe removes a connection.
func (h *Hub) Unsubscribe(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast sends a message to every subscriber of its room.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[msg.RoomID]))
	for conn := range h.rooms[msg.RoomID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = websocket.JSON.Send(conn, msg)
	}
}
