package realtime

import (
	"sync"

	"github.com/samber/lo"
)

// Hub is the room membership table of one instance.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Conn]struct{}
	byConn map[*Conn]map[string]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Conn]struct{}),
		byConn: make(map[*Conn]map[string]struct{}),
	}
}

// Subscribe adds c to room. It reports whether c was not already a member.
func (h *Hub) Subscribe(room string, c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Conn]struct{})
		h.rooms[room] = members
	}
	if _, dup := members[c]; dup {
		return false
	}
	members[c] = struct{}{}

	joined, ok := h.byConn[c]
	if !ok {
		joined = make(map[string]struct{})
		h.byConn[c] = joined
	}
	joined[room] = struct{}{}
	return true
}

// Unsubscribe removes c from room.
func (h *Hub) Unsubscribe(room string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(room, c)
	if joined := h.byConn[c]; joined != nil {
		delete(joined, room)
		if len(joined) == 0 {
			delete(h.byConn, c)
		}
	}
}

// Drop removes c from every room and returns the rooms it was in.
func (h *Hub) Drop(c *Conn) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms := lo.Keys(h.byConn[c])
	for _, room := range rooms {
		h.remove(room, c)
	}
	delete(h.byConn, c)
	return rooms
}

func (h *Hub) remove(room string, c *Conn) {
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Members returns a snapshot of room's connections.
func (h *Hub) Members(room string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.rooms[room])
}

// Rooms returns the rooms c is in.
func (h *Hub) Rooms(c *Conn) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.byConn[c])
}

// Conns returns every connection in at least one room.
func (h *Hub) Conns() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.byConn)
}

// Len reports how many rooms have at least one member.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
