package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/session"
)

// recordingConn counts messages delivered to one session.
type recordingConn struct {
	sent []uint16
}

func (c *recordingConn) Send(msgID uint16, data []byte) error {
	c.sent = append(c.sent, msgID)
	return nil
}
func (c *recordingConn) Close() error                         { return nil }
func (c *recordingConn) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *recordingConn) SetHeartbeat(interval time.Duration)  {}
func (c *recordingConn) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestRoomBroadcaster_RoomScope(t *testing.T) {
	sessions := session.NewManager()

	conn1 := &recordingConn{}
	sess1 := session.NewSession("s1", conn1)
	sess1.Seat("ROOM01", "player1")

	conn2 := &recordingConn{}
	sess2 := session.NewSession("s2", conn2)
	sess2.Seat("ROOM02", "player1")

	sessions.Add(sess1)
	sessions.Add(sess2)

	b := NewRoomBroadcaster(sessions)
	if err := b.BroadcastToRoom("ROOM01", 42, []byte(`{}`)); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if len(conn1.sent) != 1 || conn1.sent[0] != 42 {
		t.Errorf("room member should receive the event, got %v", conn1.sent)
	}
	if len(conn2.sent) != 0 {
		t.Errorf("other room must not receive the event, got %v", conn2.sent)
	}
}

func TestRoomBroadcaster_AdminsObserveEveryRoom(t *testing.T) {
	sessions := session.NewManager()

	adminConn := &recordingConn{}
	admin := session.NewSession("admin", adminConn)
	admin.IsAdmin = true
	sessions.Add(admin)

	b := NewRoomBroadcaster(sessions)
	if err := b.BroadcastToRoom("ROOM01", 42, []byte(`{}`)); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if len(adminConn.sent) != 1 {
		t.Errorf("admin session should observe room events, got %v", adminConn.sent)
	}
}

func TestRoomBroadcaster_BroadcastToAll(t *testing.T) {
	sessions := session.NewManager()
	conn1 := &recordingConn{}
	conn2 := &recordingConn{}
	sessions.Add(session.NewSession("s1", conn1))
	sessions.Add(session.NewSession("s2", conn2))

	b := NewRoomBroadcaster(sessions)
	if err := b.BroadcastToAll(7, []byte(`{}`)); err != nil {
		t.Fatalf("BroadcastToAll failed: %v", err)
	}
	if len(conn1.sent) != 1 || len(conn2.sent) != 1 {
		t.Errorf("every session should receive the event: %v %v", conn1.sent, conn2.sent)
	}
}

func TestLocalHub_SubscribeAndUnsubscribe(t *testing.T) {
	hub := NewLocalHub()

	var got []uint16
	unsubscribe := hub.Subscribe(func(roomID string, msgID uint16, data []byte) {
		got = append(got, msgID)
	})

	if err := hub.BroadcastToRoom("ROOM01", 1, nil); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}
	if err := hub.BroadcastToAll(2, nil); err != nil {
		t.Fatalf("BroadcastToAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}

	unsubscribe()
	if err := hub.BroadcastToRoom("ROOM01", 3, nil); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("unsubscribed observer still received events: %v", got)
	}
}
