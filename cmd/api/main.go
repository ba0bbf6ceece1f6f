// cmd/api is the HTTP API entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/config"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/database"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/handler"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/logger"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository/memory"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the record store ─────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	queries := service.NewQueryService(store.Events, store.Photographers, store.Assignments)
	assign := service.NewAssignmentService(store.Tx, service.WithLogger(log))
	router := handler.NewRouter(
		handler.NewEventHandler(service.NewEventService(store.Events), assign, queries),
		handler.NewPhotographerHandler(service.NewPhotographerService(store.Photographers), queries),
	)

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore returns the repositories selected by STORE_DRIVER and a func
// releasing them.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		slog.Info("migrations applied")
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	slog.Info("connected to PostgreSQL")
	return repository.NewPostgresStore(pool), pool.Close, nil
}
