package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/overtalkerr/overtalkerr/internal/adapter"
	"github.com/overtalkerr/overtalkerr/internal/api"
	"github.com/overtalkerr/overtalkerr/internal/backend"
	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/conversation"
	"github.com/overtalkerr/overtalkerr/internal/database"
	"github.com/overtalkerr/overtalkerr/internal/logger"
	"github.com/overtalkerr/overtalkerr/internal/scheduler"
	"github.com/overtalkerr/overtalkerr/internal/scheduler/tasks"
	"github.com/overtalkerr/overtalkerr/internal/session"
	"github.com/overtalkerr/overtalkerr/internal/startup"
)

func main() {
	// .env is optional; real deployments set environment variables
	// directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Msg("starting Overtalkerr")

	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour

	var store session.Store
	switch cfg.Session.Store {
	case "redis":
		redisStore, err := session.NewRedisStore(context.Background(), cfg.Session, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
	default:
		db, err := database.New(cfg.Session.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open session database")
		}
		defer db.Close()

		log.Info().Msg("running database migrations")
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		store = session.NewSQLiteStore(db, log.Logger)
	}
	defer store.Close()

	be, err := backend.New(cfg.Backend, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure media backend")
	}
	err = startup.WithRetry(
		context.Background(),
		"backend connection test",
		startup.DefaultRetryConfig(),
		func() error { return be.Test(context.Background()) },
		log.Logger,
	)
	if err != nil {
		log.Warn().Err(err).Str("backend", be.Name()).Msg("backend connection test failed, continuing anyway")
	} else {
		log.Info().Str("backend", be.Name()).Msg("media backend connected")
	}

	engine := conversation.NewEngine(be, store, log.Logger)
	router := adapter.NewRouter(log.Logger)
	server := api.NewServer(engine, router, cfg, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterSessionReapTask(sched, store, sessionTTL, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register session reap task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil {
			log.Info().Msg("server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
