package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familytravel/internal/config"
	"familytravel/internal/database"
	"familytravel/internal/handlers"
	"familytravel/internal/logging"
	"familytravel/internal/repository"
	"familytravel/internal/security"
	"familytravel/internal/service"
	"familytravel/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("failed to initialize database", err)
	}
	defer db.Close()

	slog.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		fatal("failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	countryRepo := repository.NewCountryRepository(db)
	visitedRepo := repository.NewVisitedRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Seed the country catalog on first start
	catalogService := service.NewCatalogService(countryRepo)
	if err := catalogService.SeedIfEmpty(ctx, cfg.CatalogPath); err != nil {
		slog.Warn("failed to seed country catalog", "path", cfg.CatalogPath, "error", err)
	}

	templates, err := handlers.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		fatal("failed to load templates", err)
	}

	// Initialize services
	familyService := service.NewFamilyService(userRepo, cfg.DefaultColor)
	ledgerService := service.NewLedgerService(countryRepo, visitedRepo)
	workflowService := service.NewWorkflowService(familyService, ledgerService, cfg.SwitchMode)

	if cfg.UsesDefaultSessionSecret() {
		slog.Warn("SESSION_SECRET is not set; using the built-in default, which lets anyone forge session cookies")
	}
	keys, err := session.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		fatal("failed to derive session keys", err)
	}
	store := session.NewSQLStore(sessionRepo, cfg.SessionDuration, keys.Hash, keys.Block)

	rateLimiter := security.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	go rateLimiter.RunCleanup(ctx, 10*time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(store, security.NewCSRFGenerator(keys.CSRF), rateLimiter)
	trackerHandler := handlers.NewTrackerHandler(workflowService, store, middleware, templates, db, cfg.DefaultColor)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.NewRouter(trackerHandler, middleware, cfg.StaticFilesPath),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(ctx, store)

	go func() {
		slog.Info("server starting", "addr", "http://localhost"+server.Addr, "switch_mode", cfg.SwitchMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, store *session.SQLStore) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				slog.Error("failed to clean up expired sessions", "error", err)
				continue
			}
			slog.Info("expired sessions cleaned up", "removed", n)
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
