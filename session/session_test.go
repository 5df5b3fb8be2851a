package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/coupleboard/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByRoom(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.Seat("ROOM01", "player1")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.Seat("ROOM02", "player1")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.Seat("ROOM01", "player2")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	room1Sessions := manager.GetByRoom("ROOM01")
	if len(room1Sessions) != 2 {
		t.Errorf("Expected 2 sessions in ROOM01, got %d", len(room1Sessions))
	}

	room2Sessions := manager.GetByRoom("ROOM02")
	if len(room2Sessions) != 1 {
		t.Errorf("Expected 1 session in ROOM02, got %d", len(room2Sessions))
	}

	noneSessions := manager.GetByRoom("NOSUCH")
	if len(noneSessions) != 0 {
		t.Errorf("Expected 0 sessions for unknown room, got %d", len(noneSessions))
	}
}

func TestSession_SeatUnseat(t *testing.T) {
	sess := NewSession("session1", &MockConnection{})

	roomID, slotID := sess.Seated()
	if roomID != "" || slotID != "" {
		t.Fatalf("new session should be unseated, got %q/%q", roomID, slotID)
	}

	sess.Seat("ROOM01", "player1")
	roomID, slotID = sess.Seated()
	if roomID != "ROOM01" || slotID != "player1" {
		t.Fatalf("expected ROOM01/player1, got %q/%q", roomID, slotID)
	}

	sess.Unseat()
	roomID, slotID = sess.Seated()
	if roomID != "" || slotID != "" {
		t.Fatalf("unseated session should have no room, got %q/%q", roomID, slotID)
	}
}

func TestManager_GetAdmins(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess2 := NewSession("session2", &MockConnection{})
	sess2.IsAdmin = true

	manager.Add(sess1)
	manager.Add(sess2)

	admins := manager.GetAdmins()
	if len(admins) != 1 {
		t.Fatalf("Expected 1 admin session, got %d", len(admins))
	}
	if admins[0] != sess2 {
		t.Fatal("GetAdmins should return the admin session")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("session1", &MockConnection{}))
	manager.Add(NewSession("session2", &MockConnection{}))

	if len(manager.All()) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(manager.All()))
	}
}
