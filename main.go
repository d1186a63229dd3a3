package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/wfunc/nightfall/config"
	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/persistence"
	"github.com/wfunc/nightfall/server"
	"github.com/wfunc/nightfall/timer"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Initialize Database
	db, err := openDatabase(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	clock := clockwork.NewRealClock()
	timers := timer.NewTimerManager(clock)
	defer timers.Stop()

	// Initialize Game Server
	gameServer := server.NewGameServer(server.Options{
		Config:   cfg,
		Database: db,
		Timers:   timers,
		Clock:    clock,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Log.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gameServer.Shutdown(ctx); err != nil {
			logger.Log.Warnf("Shutdown: %v", err)
		}
	}()

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg config.DatabaseConfig) (persistence.Database, error) {
	if !cfg.Enabled {
		logger.Log.Info("Database disabled, game history kept in memory.")
		return persistence.NewMemoryStore(0), nil
	}

	pg := cfg.Postgres
	var (
		db  persistence.Database
		err error
	)
	switch cfg.Driver {
	case "pq":
		db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("Database connection successful (%s).", cfg.Driver)
	return db, nil
}
