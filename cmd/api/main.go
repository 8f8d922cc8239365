package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/config"
	"github.com/CharlesGabo/MerchandiseTracker/internal/handler"
	"github.com/CharlesGabo/MerchandiseTracker/internal/notify"
	"github.com/CharlesGabo/MerchandiseTracker/internal/persistence"
	"github.com/CharlesGabo/MerchandiseTracker/internal/router"
	"github.com/CharlesGabo/MerchandiseTracker/internal/service"
	"github.com/CharlesGabo/MerchandiseTracker/internal/sheets"
	"github.com/CharlesGabo/MerchandiseTracker/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting merchandise tracker API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the snapshot persistence backend
	persist, err := newPersistence(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	defer persist.Close()

	// Load the last saved board state into the store
	orderStore := store.New(logger)
	snap, err := persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board state: %w", err)
	}
	orderStore.Restore(snap)
	logger.Info().
		Int("active", len(snap.Active)).
		Int("in_process", len(snap.InProcess)).
		Int("history", len(snap.History)).
		Int("deleted", len(snap.Deleted)).
		Msg("board state loaded")

	// Initialize the row source and notification sink clients
	feed := sheets.NewClient(sheets.Config{
		BaseURL:       cfg.Sheets.BaseURL,
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		SheetName:     cfg.Sheets.SheetName,
		APIKey:        cfg.Sheets.APIKey,
		Timeout:       time.Duration(cfg.Sheets.TimeoutSeconds) * time.Second,
	}, logger)

	notifier := notify.NewFormNotifier(notify.Config{
		FormURL: cfg.Notify.FormURL,
		Fields: notify.FieldNames{
			OrderNumber:   cfg.Notify.OrderNumberField,
			StudentNumber: cfg.Notify.StudentNumberField,
			StudentName:   cfg.Notify.StudentNameField,
			Email:         cfg.Notify.EmailField,
		},
		Timeout: time.Duration(cfg.Notify.TimeoutSeconds) * time.Second,
	}, logger)

	// Initialize the board service and HTTP surface
	board := service.NewBoard(orderStore, feed, notifier, persist, logger)
	boardHandler := handler.NewBoardHandler(board, logger)
	mux := router.New(boardHandler, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPersistence builds the snapshot store selected by configuration.
func newPersistence(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (persistence.Store, error) {
	switch cfg.Persistence.Driver {
	case "postgres":
		pool, err := persistence.NewPool(ctx, cfg.Database.ConnectionString(), &persistence.PoolConfig{
			MaxConns:        int32(cfg.Database.MaxConnections),
			MinConns:        int32(cfg.Database.MinConnections),
			MaxConnLifetime: time.Duration(cfg.Database.MaxConnLifetime) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		return persistence.NewPostgres(ctx, pool, logger)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return persistence.NewRedis(ctx, client, cfg.Redis.KeyPrefix, logger)

	case "memory":
		logger.Warn().Msg("using in-memory persistence, board state is lost on restart")
		return persistence.NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown persistence driver: %s", cfg.Persistence.Driver)
}
