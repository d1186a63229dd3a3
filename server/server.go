package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/wfunc/nightfall/broadcast"
	"github.com/wfunc/nightfall/config"
	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/monitor"
	"github.com/wfunc/nightfall/network"
	"github.com/wfunc/nightfall/persistence"
	"github.com/wfunc/nightfall/room"
	"github.com/wfunc/nightfall/services"
	"github.com/wfunc/nightfall/session"
	"github.com/wfunc/nightfall/timer"
	nightfall_rpc "github.com/wfunc/nightfall/rpc"
)

const heartbeatInterval = 30 * time.Second

// Options wires the server's collaborators. Database, Timers, Clock and
// Monitor fall back to in-process defaults when nil.
type Options struct {
	Config   *config.Config
	Database persistence.Database
	Timers   room.Scheduler
	Clock    clockwork.Clock
	Monitor  *monitor.Monitor
}

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.ChannelBroadcaster
	history        *services.HistoryService
	monitor        *monitor.Monitor
	handlers       map[string]handlerFunc
	rpcServer      *nightfall_rpc.Server
	healthServer   *nightfall_rpc.HealthServer
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
	ownTimers      *timer.TimerManager
}

func NewGameServer(opts Options) *GameServer {
	cfg := opts.Config
	if opts.Database == nil {
		opts.Database = persistence.NewMemoryStore(0)
	}
	if opts.Monitor == nil {
		opts.Monitor = monitor.NewMonitor("nightfall")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	// a timer manager created here is stopped by Shutdown
	var ownTimers *timer.TimerManager
	if opts.Timers == nil {
		ownTimers = timer.NewTimerManager(opts.Clock)
		opts.Timers = ownTimers
	}

	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		history:        services.NewHistoryService(opts.Database),
		monitor:        opts.Monitor,
		ownTimers:      ownTimers,
		shutdownChan:   make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewChannelBroadcaster(s.sessionManager)

	s.roomManager = room.NewRoomManager(room.Options{
		Settings:    roomSettings(cfg.Game),
		Broadcaster: s.broadcaster,
		Timers:      opts.Timers,
		Clock:       opts.Clock,
		OnGameEnd:   s.onGameEnd,
	})
	s.registerHandlers()
	return s
}

func roomSettings(g config.GameConfig) room.Settings {
	return room.Settings{
		MinPlayers:    g.MinPlayers,
		ChatMaxLength: g.ChatMaxLength,
		NameMaxLength: g.NameMaxLength,
		DefaultName:   g.DefaultName,
		Durations: map[models.Phase]time.Duration{
			models.PhaseNight:   g.Phases.Night,
			models.PhaseDay:     g.Phases.Day,
			models.PhaseVote:    g.Phases.Vote,
			models.PhaseResolve: g.Phases.Resolve,
		},
	}
}

// Handler is the HTTP surface: websocket, liveness and static assets.
func (s *GameServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet, http.MethodHead)
	if s.cfg.Server.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.Server.StaticDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})
	return c.Handler(r)
}

func (s *GameServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := s.cfg.Server.AllowedOrigins
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// Start runs the admin RPC, gRPC health and metrics listeners, then blocks
// serving HTTP until Shutdown.
func (s *GameServer) Start() error {
	rpcServer, err := nightfall_rpc.NewServer(s.cfg.Server.RPCAddress,
		nightfall_rpc.NewRoomService(s.roomManager, s.history))
	if err != nil {
		return err
	}
	s.rpcServer = rpcServer
	go s.rpcServer.Start()

	if s.cfg.Server.GRPCAddress != "" {
		healthServer, err := nightfall_rpc.NewHealthServer(s.cfg.Server.GRPCAddress)
		if err != nil {
			s.rpcServer.Stop()
			return err
		}
		s.healthServer = healthServer
		go s.healthServer.Start()
	}

	if s.cfg.Server.MetricsAddress != "" {
		s.monitor.StartServer(s.cfg.Server.MetricsAddress)
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.HTTPAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every live session.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
		if bErr := s.broadcaster.BroadcastToAll(network.MsgSystemMessage, "server_shutdown"); bErr != nil {
			logger.Log.Debugf("Shutdown notice: %v", bErr)
		}
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		if s.ownTimers != nil {
			s.ownTimers.Stop()
		}
		if s.healthServer != nil {
			s.healthServer.Stop()
		}
		if mErr := s.monitor.Shutdown(ctx); mErr != nil && err == nil {
			err = mErr
		}
	})
	return err
}

func (s *GameServer) Rooms() *room.Manager {
	return s.roomManager
}

func (s *GameServer) onGameEnd(record models.GameRecord) {
	s.monitor.IncGamesFinished(string(record.Winner))
	// 记录失败已在服务内记录日志
	_ = s.history.RecordGame(context.Background(), record)
}
