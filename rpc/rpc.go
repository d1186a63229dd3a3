package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer creates a new RPC server that exposes the given services.
func NewServer(addr string, services ...interface{}) (*Server, error) {
	srv := rpc.NewServer()
	for _, svc := range services {
		if err := srv.Register(svc); err != nil {
			return nil, err
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameHistory is the read side of the game history.
type GameHistory interface {
	RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error)
	WinCounts(ctx context.Context, limit int) (map[models.Winner]int, error)
}

// RoomService exposes read-only room and history queries to operators.
// Methods follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.
type RoomService struct {
	rooms   *room.Manager
	history GameHistory
}

func NewRoomService(rooms *room.Manager, history GameHistory) *RoomService {
	return &RoomService{rooms: rooms, history: history}
}

// ListRoomsArgs filters by phase; an empty Phase lists every room.
type ListRoomsArgs struct {
	Phase models.Phase
}

type RoomSummary struct {
	Code    string
	Phase   models.Phase
	Host    string
	Players int
}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

func (rs *RoomService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, r := range rs.rooms.Rooms() {
		view := r.View()
		if args.Phase != "" && view.Phase != args.Phase {
			continue
		}
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:    view.Code,
			Phase:   view.Phase,
			Host:    view.Host,
			Players: len(view.Players),
		})
	}
	return nil
}

type GetRoomArgs struct {
	Code string
}

type GetRoomReply struct {
	Room models.RoomView
}

func (rs *RoomService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, err := rs.rooms.FindRoom(args.Code)
	if err != nil {
		return err
	}
	reply.Room = r.View()
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Games []models.GameRecord
}

func (rs *RoomService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	if rs.history == nil {
		return nil
	}
	games, err := rs.history.RecentGames(context.Background(), args.Limit)
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}

type GameStatsArgs struct {
	Limit int
}

// GameStatsReply counts wins per side over the last Limit games.
type GameStatsReply struct {
	Citizens int
	Murderer int
}

func (rs *RoomService) GameStats(args *GameStatsArgs, reply *GameStatsReply) error {
	if rs.history == nil {
		return nil
	}
	counts, err := rs.history.WinCounts(context.Background(), args.Limit)
	if err != nil {
		return err
	}
	reply.Citizens = counts[models.WinnerCitizens]
	reply.Murderer = counts[models.WinnerMurderer]
	return nil
}
