// broadcast/broadcast.go
package broadcast

import (
	"sync"

	"github.com/wfunc/coupleboard/session"
)

// Broadcaster delivers a committed room event to everyone attached to the
// room. The game engine only ever talks to this interface; whether delivery
// crosses a socket or a function call is the online/local mode distinction.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
}

// RoomBroadcaster fans events out to the websocket sessions seated in a
// room. Online mode.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoom(roomID) {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is cleaned up by its own read loop;
			// the broadcast keeps going for the rest of the room.
			continue
		}
	}
	for _, s := range b.sessionManager.GetAdmins() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

// LocalHub delivers events to in-process subscribers. Single-device mode
// and tests: no network, no reordering, same event surface.
type LocalHub struct {
	mutex       sync.RWMutex
	subscribers map[int]func(roomID string, msgID uint16, data []byte)
	nextID      int
}

func NewLocalHub() *LocalHub {
	return &LocalHub{
		subscribers: make(map[int]func(roomID string, msgID uint16, data []byte)),
	}
}

// Subscribe registers an observer; the returned function removes it.
func (h *LocalHub) Subscribe(fn func(roomID string, msgID uint16, data []byte)) func() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	return func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		delete(h.subscribers, id)
	}
}

func (h *LocalHub) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for _, fn := range h.subscribers {
		fn(roomID, msgID, data)
	}
	return nil
}

func (h *LocalHub) BroadcastToAll(msgID uint16, data []byte) error {
	return h.BroadcastToRoom("", msgID, data)
}
