package server

import (
	"encoding/json"

	"github.com/wfunc/coupleboard/game"
	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/session"
)

// Admin channel handlers. The gate is an exact string match on the shared
// key; not cryptographically strong, which is the documented limitation of
// the dashboard. Admin commands go through the same manager/room entry
// points as player commands, so per-room serialization still holds.

func (s *GameServer) handleAdminJoin(sess *session.Session, packet *network.Packet) {
	var req network.AdminJoinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-join payload")
		return
	}

	if s.adminKey == "" || req.Key != s.adminKey {
		logger.Log.Warnf("Admin join rejected for session %s", sess.GetID())
		s.sendError(sess, game.ErrUnauthorized)
		return
	}

	sess.IsAdmin = true
	logger.Log.Infof("Session %s joined the admin channel", sess.GetID())
	s.reply(sess, network.MsgTypeAdminRoomsList, network.AdminRoomsListEvent{Rooms: s.manager.RoomsList()})
}

func (s *GameServer) requireAdmin(sess *session.Session) bool {
	if !sess.IsAdmin {
		s.sendError(sess, game.ErrUnauthorized)
		return false
	}
	return true
}

func (s *GameServer) handleAdminRoomsList(sess *session.Session) {
	if !s.requireAdmin(sess) {
		return
	}
	s.reply(sess, network.MsgTypeAdminRoomsList, network.AdminRoomsListEvent{Rooms: s.manager.RoomsList()})
}

func (s *GameServer) handleAdminCloseRoom(sess *session.Session, packet *network.Packet) {
	if !s.requireAdmin(sess) {
		return
	}
	var req network.AdminRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-close-room payload")
		return
	}

	if err := s.manager.CloseRoom(req.RoomID, "closed by admin"); err != nil {
		s.sendError(sess, err)
		return
	}
	s.mon.SetActiveRooms(s.manager.RoomCount())
	s.handleAdminRoomsList(sess)
}

func (s *GameServer) handleAdminKickPlayer(sess *session.Session, packet *network.Packet) {
	if !s.requireAdmin(sess) {
		return
	}
	var req network.AdminKickRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-kick-player payload")
		return
	}

	if err := s.manager.KickPlayer(req.RoomID, req.PlayerID); err != nil {
		s.sendError(sess, err)
		return
	}
	s.mon.SetActiveRooms(s.manager.RoomCount())
}

func (s *GameServer) handleAdminResetGame(sess *session.Session, packet *network.Packet) {
	if !s.requireAdmin(sess) {
		return
	}
	var req network.AdminRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-reset-game payload")
		return
	}

	if err := s.manager.ResetRoom(req.RoomID); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleAdminBroadcast(sess *session.Session, packet *network.Packet) {
	if !s.requireAdmin(sess) {
		return
	}
	var req network.AdminBroadcastRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-broadcast payload")
		return
	}

	if err := s.manager.BroadcastMessage(req.RoomID, req.Message); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleAdminUpdateSettings(sess *session.Session, packet *network.Packet) {
	if !s.requireAdmin(sess) {
		return
	}
	var req network.SettingsPayload
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendErrorText(sess, "malformed admin-update-settings payload")
		return
	}

	applied, err := s.manager.UpdateSettings(game.Settings{
		BoardSize:   req.BoardSize,
		TaskRatio:   req.TaskRatio,
		DareSeconds: req.DareSeconds,
	})
	if err != nil {
		s.sendError(sess, err)
		return
	}
	s.reply(sess, network.MsgTypeAdminUpdateSettings, network.SettingsPayload{
		BoardSize:   applied.BoardSize,
		TaskRatio:   applied.TaskRatio,
		DareSeconds: applied.DareSeconds,
	})
}
