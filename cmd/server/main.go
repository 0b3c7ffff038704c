package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordladder/internal/config"
	"wordladder/internal/database"
	"wordladder/internal/handlers"
	"wordladder/internal/logging"
	"wordladder/internal/repository"
	"wordladder/internal/security"
	"wordladder/internal/service"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	slog.SetDefault(logger)

	if cfg.TokenSecret == "" {
		logger.Warn("token_secret is empty; every API request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	logger.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, err := db.MigrationVersion(ctx)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations completed", "version", version)

	// Initialize repositories
	wordRepo := repository.NewWordRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	screeningRepo := repository.NewScreeningRepository(db)

	// Initialize services
	analyzer := service.NewMissedItemAnalyzer(sessionRepo)
	graph := service.NewWordGraphService(db, wordRepo, logger)
	sessions := service.NewSessionService(db, sessionRepo, wordRepo, screeningRepo, analyzer, logger, cfg.MaxItemCount)

	var limiter *security.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = security.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Sessions:          sessions,
		Analyzer:          analyzer,
		Graph:             graph,
		Verifier:          security.NewTokenVerifier(cfg.TokenSecret),
		Limiter:           limiter,
		Store:             db,
		Logger:            logger,
		DefaultItemCount:  cfg.DefaultItemCount,
		DefaultWindowDays: cfg.DefaultWindowDays,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
