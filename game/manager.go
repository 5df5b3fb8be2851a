// game/manager.go
package game

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/tasks"
	"github.com/wfunc/coupleboard/timer"
)

const (
	// roomCodeLength and roomCodeAlphabet shape the join codes players
	// type by hand; the alphabet drops easily confused characters.
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// seat records which room and slot a connection occupies. The index makes
// disconnect cleanup O(1) and enforces one room per connection.
type seat struct {
	roomID string
	slotID string
}

// Manager owns the room registry, the connection index, and the
// authoritative game settings. Registry mutations hold the manager mutex;
// per-room operations hold only that room's mutex.
type Manager struct {
	mutex    sync.RWMutex
	rooms    map[string]*Room
	conns    map[string]seat
	settings Settings

	library     *tasks.Library
	timers      *timer.Manager
	broadcaster Broadcaster
	records     RecordSink
	rng         *rand.Rand
}

func NewManager(settings Settings, library *tasks.Library, timers *timer.Manager, broadcaster Broadcaster, records RecordSink) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		conns:       make(map[string]seat),
		settings:    settings,
		library:     library,
		timers:      timers,
		broadcaster: broadcaster,
		records:     records,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateRoom makes a room with a fresh collision-checked code and seats the
// creator in player1.
func (m *Manager) CreateRoom(connID, name string) (*Room, string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, bound := m.conns[connID]; bound {
		return nil, "", ErrAlreadyInRoom
	}

	var code string
	for {
		code = m.generateCode()
		if _, taken := m.rooms[code]; !taken {
			break
		}
	}

	room, err := newRoom(code, m.settings, m.library, m.timers, m.broadcaster, m.records, rand.New(rand.NewSource(m.rng.Int63())))
	if err != nil {
		return nil, "", err
	}

	slot, err := room.addPlayer(name)
	if err != nil {
		return nil, "", err
	}

	m.rooms[code] = room
	m.conns[connID] = seat{roomID: code, slotID: slot}

	logger.Log.Infow("room created", "room", code, "conn", connID)
	return room, slot, nil
}

// JoinRoom seats a second player.
func (m *Manager) JoinRoom(connID, roomID, name string) (*Room, string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, bound := m.conns[connID]; bound {
		return nil, "", ErrAlreadyInRoom
	}
	room, exists := m.rooms[roomID]
	if !exists {
		return nil, "", ErrRoomNotFound
	}

	slot, err := room.addPlayer(name)
	if err != nil {
		return nil, "", err
	}
	m.conns[connID] = seat{roomID: roomID, slotID: slot}

	logger.Log.Infow("player joined", "room", roomID, "conn", connID, "slot", slot)
	return room, slot, nil
}

// GetRoom resolves a room code.
func (m *Manager) GetRoom(roomID string) (*Room, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RoomForConn resolves the room a connection is seated in.
func (m *Manager) RoomForConn(connID string) (*Room, string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	st, bound := m.conns[connID]
	if !bound {
		return nil, "", ErrRoomNotFound
	}
	room, exists := m.rooms[st.roomID]
	if !exists {
		return nil, "", ErrRoomNotFound
	}
	return room, st.slotID, nil
}

// Leave removes the connection's player from its room, destroying the room
// when it empties.
func (m *Manager) Leave(connID string) error {
	return m.unseat(connID, "left")
}

// HandleDisconnect is Leave for a dropped connection. Idempotent: a second
// call for the same connection id is a logged no-op.
func (m *Manager) HandleDisconnect(connID string) {
	if err := m.unseat(connID, "disconnected"); err != nil {
		logger.Log.Debugw("disconnect cleanup: nothing to do", "conn", connID, "err", err)
	}
}

func (m *Manager) unseat(connID, reason string) error {
	m.mutex.Lock()
	st, bound := m.conns[connID]
	if !bound {
		m.mutex.Unlock()
		return ErrRoomNotFound
	}
	delete(m.conns, connID)
	room, exists := m.rooms[st.roomID]
	m.mutex.Unlock()

	if !exists {
		return ErrRoomNotFound
	}

	empty, err := room.removePlayer(st.slotID, reason)
	if err != nil {
		return err
	}
	if empty {
		m.destroyRoom(st.roomID, "empty")
	}
	return nil
}

// KickPlayer is the admin removal path; it also unbinds the victim's
// connection from the index.
func (m *Manager) KickPlayer(roomID, slotID string) error {
	m.mutex.Lock()
	room, exists := m.rooms[roomID]
	if !exists {
		m.mutex.Unlock()
		return ErrRoomNotFound
	}
	for connID, st := range m.conns {
		if st.roomID == roomID && st.slotID == slotID {
			delete(m.conns, connID)
			break
		}
	}
	m.mutex.Unlock()

	empty, err := room.removePlayer(slotID, "kicked")
	if err != nil {
		return err
	}
	if empty {
		m.destroyRoom(roomID, "empty")
	}
	return nil
}

// CloseRoom force-closes a room and unbinds every seated connection.
func (m *Manager) CloseRoom(roomID, reason string) error {
	m.mutex.RLock()
	_, exists := m.rooms[roomID]
	m.mutex.RUnlock()
	if !exists {
		return ErrRoomNotFound
	}
	m.destroyRoom(roomID, reason)
	return nil
}

func (m *Manager) destroyRoom(roomID, reason string) {
	m.mutex.Lock()
	room, exists := m.rooms[roomID]
	if exists {
		delete(m.rooms, roomID)
	}
	for connID, st := range m.conns {
		if st.roomID == roomID {
			delete(m.conns, connID)
		}
	}
	m.mutex.Unlock()

	if exists {
		room.close(reason)
		logger.Log.Infow("room destroyed", "room", roomID, "reason", reason)
	}
}

// ResetRoom is the admin reset / play-again entry.
func (m *Manager) ResetRoom(roomID string) error {
	room, err := m.GetRoom(roomID)
	if err != nil {
		return err
	}
	return room.Reset()
}

// BroadcastMessage pushes an admin message to one room, or to every room
// when roomID is empty.
func (m *Manager) BroadcastMessage(roomID, message string) error {
	data, err := json.Marshal(network.AdminMessageEvent{Message: message})
	if err != nil {
		return err
	}

	if roomID != "" {
		if _, err := m.GetRoom(roomID); err != nil {
			return err
		}
		return m.broadcaster.BroadcastToRoom(roomID, network.MsgTypeAdminMessage, data)
	}

	m.mutex.RLock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	m.mutex.RUnlock()

	for _, id := range ids {
		_ = m.broadcaster.BroadcastToRoom(id, network.MsgTypeAdminMessage, data)
	}
	return nil
}

// RoomsList is the admin dashboard view.
func (m *Manager) RoomsList() []network.RoomSummary {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mutex.RUnlock()

	summaries := make([]network.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries
}

// RoomCount reports the number of live rooms, for metrics.
func (m *Manager) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// CloseIdleRooms destroys rooms with no activity for maxIdle and returns
// how many were closed.
func (m *Manager) CloseIdleRooms(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mutex.RLock()
	var stale []string
	for id, room := range m.rooms {
		if room.LastActivity().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mutex.RUnlock()

	for _, id := range stale {
		m.destroyRoom(id, "idle")
	}
	return len(stale)
}

// Settings returns the current game settings value.
func (m *Manager) Settings() Settings {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.settings
}

// UpdateSettings replaces the settings applied to rooms created from now
// on and returns the applied value. Existing rooms keep the settings they
// were built with.
func (m *Manager) UpdateSettings(s Settings) (Settings, error) {
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.settings = s
	logger.Log.Infow("settings updated", "boardSize", s.BoardSize, "taskRatio", s.TaskRatio, "dareSeconds", s.DareSeconds)
	return m.settings, nil
}

func (m *Manager) generateCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[m.rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
