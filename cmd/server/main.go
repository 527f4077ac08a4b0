// Command notes-server starts the notes HTTP API.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/config"
	"github.com/and161185/notekeeper/internal/migrate"
	"github.com/and161185/notekeeper/internal/repository/postgres"
	httpserver "github.com/and161185/notekeeper/internal/server/http"
	"github.com/and161185/notekeeper/internal/service"
	"github.com/and161185/notekeeper/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves the HTTP API until SIGINT/SIGTERM.
func main() {
	cfg, cfgErr := config.Load(os.Args[1:], os.Getenv)

	logger, _ := zap.NewProduction()
	if cfgErr == nil && cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("invalid configuration", zap.Error(cfgErr))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	tokens, err := token.New(cfg.Token())
	if err != nil {
		logger.Fatal("token manager", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	noteRepo := postgres.NewNoteRepo(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokens, logger.Named("auth"))
	noteSvc := service.NewNoteService(noteRepo)

	app := httpserver.New(authSvc, noteSvc, logger.Named("http"),
		httpserver.WithPinger(db),
		httpserver.WithCORSOrigin(cfg.CORSOrigin),
	)
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
