package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpServer "github.com/avrorin/identity-server/internal/api/http/server"

	"github.com/avrorin/identity-server/internal/api/http/handler"
	"github.com/avrorin/identity-server/internal/api/http/router"
	"github.com/avrorin/identity-server/internal/config"
	"github.com/avrorin/identity-server/internal/logger"
	"github.com/avrorin/identity-server/internal/model"
	"github.com/avrorin/identity-server/internal/repository/memory"
	"github.com/avrorin/identity-server/internal/repository/postgres"
	"github.com/avrorin/identity-server/internal/repository/redis"
	"github.com/avrorin/identity-server/internal/security"
	"github.com/avrorin/identity-server/internal/server"
	"github.com/avrorin/identity-server/internal/service"
	"github.com/avrorin/identity-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)

	sessionStore, err := makeSessionStore(cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize session store", "error", err)
	}
	logger.Info("session store initialized", "backend", cfg.SessionStore)

	codec := token.NewJWT(cfg.JWT.Secret)
	hasher := security.NewPasswordHasher(cfg.Password.Cost)

	tokenService := service.NewTokenService(codec, sessionStore, cfg.JWT.TTL, logger)
	authService := service.NewAuth(userRepo, tokenService, hasher, logger)

	authHandler := handler.NewAuth(authService, logger)
	engine := router.New(authHandler, logger).Register()
	srv := httpServer.NewHTTPServer(engine, cfg.HTTP.Address)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func makeSessionStore(cfg *config.Config, db *postgres.Connection) (model.SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		return memory.NewSessionRepository(), nil
	case config.SessionStorePostgres:
		return postgres.NewSessionRepository(db), nil
	case config.SessionStoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redis.NewSessionRepository(client), nil
	default:
		return nil, fmt.Errorf("unknown session store backend: %q", cfg.SessionStore)
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
