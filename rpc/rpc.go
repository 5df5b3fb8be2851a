package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/coupleboard/game"
	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/models"
	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/services"
)

// Server manages the RPC listener for the admin dashboard's non-realtime
// reads (rooms list, archive queries).
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes dashboard queries over net/rpc. Exported methods
// follow the net/rpc signature rules.
type AdminService struct {
	manager *game.Manager
	records *services.RecordService
}

func NewAdminService(manager *game.Manager, records *services.RecordService) *AdminService {
	return &AdminService{manager: manager, records: records}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []network.RoomSummary
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = a.manager.RoomsList()
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Records []models.GameRecord
}

func (a *AdminService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	records, err := a.records.RecentGames(args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}
