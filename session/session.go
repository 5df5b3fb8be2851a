// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/coupleboard/network"
)

// Session is one connected client. RoomID and SlotID are set while the
// session is seated in a room; IsAdmin is set after a successful admin-join.
type Session struct {
	ID         string
	Conn       network.Connection
	Name       string
	RoomID     string
	SlotID     string
	IsAdmin    bool
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msgID, data)
}

// Seat records the room membership of this session.
func (s *Session) Seat(roomID, slotID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = roomID
	s.SlotID = slotID
}

// Unseat clears the room membership.
func (s *Session) Unseat() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = ""
	s.SlotID = ""
}

// Seated returns the current room and slot ids.
func (s *Session) Seated() (roomID, slotID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomID, s.SlotID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByRoom returns every session seated in the given room.
func (m *Manager) GetByRoom(roomID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		session.mutex.RLock()
		match := session.RoomID == roomID
		session.mutex.RUnlock()
		if match {
			result = append(result, session)
		}
	}
	return result
}

// GetAdmins returns every session on the admin channel.
func (m *Manager) GetAdmins() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.IsAdmin {
			result = append(result, session)
		}
	}
	return result
}

// All returns every live session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
