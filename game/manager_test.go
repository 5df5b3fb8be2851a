package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/tasks"
	"github.com/wfunc/coupleboard/timer"
)

func newTestManager(t *testing.T) (*Manager, *eventRecorder) {
	t.Helper()
	events := &eventRecorder{}
	timers := timer.NewManager()
	t.Cleanup(timers.Close)
	return NewManager(testSettings(), tasks.DefaultLibrary(), timers, events, &recordCollector{}), events
}

func TestManager_CreateRoom(t *testing.T) {
	manager, _ := newTestManager(t)

	room, slot, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	require.Equal(t, SlotPlayer1, slot)
	require.Len(t, room.ID, roomCodeLength)
	for _, c := range room.ID {
		require.True(t, strings.ContainsRune(roomCodeAlphabet, c), "code %q has invalid rune %q", room.ID, c)
	}
	require.Equal(t, 1, manager.RoomCount())

	// One room per connection.
	_, _, err = manager.CreateRoom("conn-1", "alice again")
	require.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestManager_JoinRoom(t *testing.T) {
	manager, _ := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)

	_, _, err = manager.JoinRoom("conn-2", "NOSUCH", "bob")
	require.ErrorIs(t, err, ErrRoomNotFound)

	joined, slot, err := manager.JoinRoom("conn-2", room.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, SlotPlayer2, slot)
	require.Same(t, room, joined)

	_, _, err = manager.JoinRoom("conn-3", room.ID, "carol")
	require.ErrorIs(t, err, ErrRoomFull)

	got, slot, err := manager.RoomForConn("conn-2")
	require.NoError(t, err)
	require.Same(t, room, got)
	require.Equal(t, SlotPlayer2, slot)
}

func TestManager_LeaveDestroysEmptyRoom(t *testing.T) {
	manager, events := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	_, _, err = manager.JoinRoom("conn-2", room.ID, "bob")
	require.NoError(t, err)

	require.NoError(t, manager.Leave("conn-2"))
	require.Equal(t, 1, manager.RoomCount())

	require.NoError(t, manager.Leave("conn-1"))
	require.Equal(t, 0, manager.RoomCount())
	require.Equal(t, 1, events.count(network.MsgTypeRoomClosed))

	_, _, err = manager.RoomForConn("conn-1")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestManager_DisconnectIsIdempotent(t *testing.T) {
	manager, _ := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	_, _, err = manager.JoinRoom("conn-2", room.ID, "bob")
	require.NoError(t, err)
	require.NoError(t, room.Start())

	manager.HandleDisconnect("conn-2")
	require.Equal(t, SlotPlayer1, room.WinnerID(), "mid-game disconnect forfeits")

	// Replays of the same disconnect change nothing.
	manager.HandleDisconnect("conn-2")
	manager.HandleDisconnect("never-seen")
	require.Equal(t, SlotPlayer1, room.WinnerID())
	require.Equal(t, 1, manager.RoomCount())
}

func TestManager_KickPlayer(t *testing.T) {
	manager, _ := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	_, _, err = manager.JoinRoom("conn-2", room.ID, "bob")
	require.NoError(t, err)

	require.NoError(t, manager.KickPlayer(room.ID, SlotPlayer2))

	// The kicked connection is unbound and may join elsewhere.
	_, _, err = manager.RoomForConn("conn-2")
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, _, err = manager.JoinRoom("conn-2", room.ID, "bob again")
	require.NoError(t, err)

	require.ErrorIs(t, manager.KickPlayer("NOSUCH", SlotPlayer1), ErrRoomNotFound)
}

func TestManager_CloseRoom(t *testing.T) {
	manager, events := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)

	require.NoError(t, manager.CloseRoom(room.ID, "admin"))
	require.Equal(t, 0, manager.RoomCount())
	require.Equal(t, 1, events.count(network.MsgTypeRoomClosed))

	// The creator's connection is unbound with the room.
	_, _, err = manager.RoomForConn("conn-1")
	require.ErrorIs(t, err, ErrRoomNotFound)

	require.ErrorIs(t, manager.CloseRoom(room.ID, "admin"), ErrRoomNotFound)
}

func TestManager_RoomsList(t *testing.T) {
	manager, _ := newTestManager(t)
	require.Empty(t, manager.RoomsList())

	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)

	list := manager.RoomsList()
	require.Len(t, list, 1)
	require.Equal(t, room.ID, list[0].ID)
	require.Equal(t, 1, list[0].PlayerCount)
	require.Equal(t, "waiting", list[0].Status)
}

func TestManager_BroadcastMessage(t *testing.T) {
	manager, events := newTestManager(t)
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	_, _, err = manager.CreateRoom("conn-2", "carol")
	require.NoError(t, err)

	require.NoError(t, manager.BroadcastMessage(room.ID, "hello"))
	require.Equal(t, 1, events.count(network.MsgTypeAdminMessage))

	require.NoError(t, manager.BroadcastMessage("", "everyone"))
	require.Equal(t, 3, events.count(network.MsgTypeAdminMessage))

	require.ErrorIs(t, manager.BroadcastMessage("NOSUCH", "hello"), ErrRoomNotFound)
}

func TestManager_UpdateSettings(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.UpdateSettings(Settings{BoardSize: 10, TaskRatio: 0.3, DareSeconds: 60})
	require.Error(t, err)
	require.Equal(t, 40, manager.Settings().BoardSize)

	applied, err := manager.UpdateSettings(Settings{BoardSize: 24, TaskRatio: 0.5, DareSeconds: 30})
	require.NoError(t, err)
	require.Equal(t, 24, applied.BoardSize)

	// New rooms pick up the new settings.
	room, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)
	require.Len(t, room.Snapshot().Board, 24)
}

func TestManager_CloseIdleRooms(t *testing.T) {
	manager, _ := newTestManager(t)
	_, _, err := manager.CreateRoom("conn-1", "alice")
	require.NoError(t, err)

	require.Equal(t, 0, manager.CloseIdleRooms(time.Hour))
	require.Equal(t, 1, manager.RoomCount())

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, manager.CloseIdleRooms(time.Nanosecond))
	require.Equal(t, 0, manager.RoomCount())
}
