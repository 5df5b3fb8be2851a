package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/coupleboard/broadcast"
	"github.com/wfunc/coupleboard/config"
	"github.com/wfunc/coupleboard/game"
	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/monitor"
	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/services"
	"github.com/wfunc/coupleboard/session"
	"github.com/wfunc/coupleboard/tasks"
	"github.com/wfunc/coupleboard/timer"

	coupleboard_rpc "github.com/wfunc/coupleboard/rpc"
)

// Rooms nobody has touched for this long are swept.
const roomIdleTimeout = 30 * time.Minute

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	manager        *game.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	records        *services.RecordService
	mon            *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *coupleboard_rpc.Server
	adminKey       string
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, records *services.RecordService) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		sessionManager: session.NewManager(),
		records:        records,
		mon:            monitor.NewMonitor("coupleboard"),
		timers:         timer.NewManager(),
		adminKey:       cfg.Admin.Key,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewInstrumented(broadcast.NewRoomBroadcaster(s.sessionManager), s.mon)

	library := tasks.NewLibrary(cfg.Tasks.Truths, cfg.Tasks.Dares)
	settings := game.Settings{
		BoardSize:   cfg.Game.BoardSize,
		TaskRatio:   cfg.Game.TaskRatio,
		DareSeconds: cfg.Game.DareSeconds,
	}
	s.manager = game.NewManager(settings, library, s.timers, s.broadcaster, records)

	rpcServer, err := coupleboard_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(coupleboard_rpc.NewAdminService(s.manager, records))

	s.mon.StartServer(cfg.Server.MetricsAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	go s.sweepIdleRooms()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	if data, err := json.Marshal(network.AdminMessageEvent{Message: "server shutting down"}); err == nil {
		_ = s.broadcaster.BroadcastToAll(network.MsgTypeAdminMessage, data)
	}
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Close()
	s.records.Close()
}

func (s *GameServer) sweepIdleRooms() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.manager.CloseIdleRooms(roomIdleTimeout); n > 0 {
				logger.Log.Infow("idle rooms closed", "count", n)
			}
			s.mon.SetActiveRooms(s.manager.RoomCount())
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.manager.HandleDisconnect(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()
		s.mon.SetActiveRooms(s.manager.RoomCount())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			s.handlePacket(sess, packet)
			s.mon.ObserveMessageLatency(time.Since(start))
		}
	}
}

// handlePacket is the single dispatcher for the closed command set. Every
// failed precondition becomes one error event to the originating session;
// nothing here panics on malformed input.
func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	s.mon.IncMessagesReceived()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Send updates LastActive; echo the heartbeat back.
		_ = sess.Send(network.MsgTypeHeartbeat, nil)

	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess)

	case network.MsgTypeRollDice:
		s.handleRollDice(sess)
	case network.MsgTypeMovePlayer:
		s.handleMovePlayer(sess, packet)
	case network.MsgTypeSelectTaskCategory:
		s.handleSelectCategory(sess, packet)
	case network.MsgTypeStartTimer:
		s.handleTaskOp(sess, func(r *game.Room) error { return r.StartTimer() })
	case network.MsgTypeCompleteTask:
		s.handleTaskOp(sess, func(r *game.Room) error { return r.CompleteTask() })
	case network.MsgTypeSkipTask:
		s.handleTaskOp(sess, func(r *game.Room) error { return r.SkipTask() })
	case network.MsgTypeRerollTask:
		s.handleTaskOp(sess, func(r *game.Room) error { return r.RerollTask() })

	case network.MsgTypeAdminJoin:
		s.handleAdminJoin(sess, packet)
	case network.MsgTypeAdminRoomsList:
		s.handleAdminRoomsList(sess)
	case network.MsgTypeAdminCloseRoom:
		s.handleAdminCloseRoom(sess, packet)
	case network.MsgTypeAdminKickPlayer:
		s.handleAdminKickPlayer(sess, packet)
	case network.MsgTypeAdminResetGame:
		s.handleAdminResetGame(sess, packet)
	case network.MsgTypeAdminBroadcast:
		s.handleAdminBroadcast(sess, packet)
	case network.MsgTypeAdminUpdateSettings:
		s.handleAdminUpdateSettings(sess, packet)

	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		s.sendErrorText(sess, "unknown message type")
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req network.CreateRoomRequest
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			s.sendErrorText(sess, "malformed create-room payload")
			return
		}
	}

	room, slot, err := s.manager.CreateRoom(sess.GetID(), req.Name)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	sess.Seat(room.ID, slot)
	s.mon.SetActiveRooms(s.manager.RoomCount())

	snap := room.Snapshot()
	snap.YourSlot = slot
	s.reply(sess, network.MsgTypeRoomCreated, snap)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req network.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed join-room payload")
		return
	}

	room, slot, err := s.manager.JoinRoom(sess.GetID(), req.RoomID, req.Name)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	sess.Seat(room.ID, slot)

	snap := room.Snapshot()
	snap.YourSlot = slot
	s.reply(sess, network.MsgTypeRoomJoined, snap)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	if err := s.manager.Leave(sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	sess.Unseat()
	s.mon.SetActiveRooms(s.manager.RoomCount())
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	room, _, err := s.manager.RoomForConn(sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if err := room.Start(); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleRollDice(sess *session.Session) {
	room, slot, err := s.manager.RoomForConn(sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if _, err := room.RollDice(slot); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleMovePlayer(sess *session.Session, packet *network.Packet) {
	var req network.MovePlayerRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed move-player payload")
		return
	}

	room, slot, err := s.manager.RoomForConn(sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if err := room.Move(slot, req.Steps); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleSelectCategory(sess *session.Session, packet *network.Packet) {
	var req network.SelectCategoryRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed select-task-category payload")
		return
	}

	room, _, err := s.manager.RoomForConn(sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if err := room.SelectCategory(tasks.Category(req.Category)); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleTaskOp(sess *session.Session, op func(*game.Room) error) {
	room, _, err := s.manager.RoomForConn(sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if err := op(room); err != nil {
		s.sendError(sess, err)
	}
}

// reply sends an event to one session only.
func (s *GameServer) reply(sess *session.Session, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Failed to marshal reply %d: %v", msgID, err)
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Debugf("Failed to send reply to session %s: %v", sess.GetID(), err)
	}
}

func (s *GameServer) sendError(sess *session.Session, err error) {
	s.sendErrorText(sess, err.Error())
}

func (s *GameServer) sendErrorText(sess *session.Session, message string) {
	s.reply(sess, network.MsgTypeError, network.ErrorMessage{Message: message})
}
