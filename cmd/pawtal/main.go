// Package main is the entry point for the Pawtal content server.
// It loads configuration, connects to services, starts the background
// scheduler, and runs the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janvanerven/pawtal/internal/cache"
	"github.com/janvanerven/pawtal/internal/config"
	"github.com/janvanerven/pawtal/internal/database"
	"github.com/janvanerven/pawtal/internal/handlers"
	"github.com/janvanerven/pawtal/internal/lifecycle"
	"github.com/janvanerven/pawtal/internal/router"
	"github.com/janvanerven/pawtal/internal/scheduler"
	"github.com/janvanerven/pawtal/internal/store"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and bring the schema up to date.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the published-content cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	contentCache := cache.NewContentCache(valkeyClient, cache.DefaultContentTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	contentStore := store.NewContentStore(db)
	revisionStore := store.NewRevisionStore(db)
	auditStore := store.NewAuditStore(db)

	// The lifecycle service is the single write path for content. The
	// content cache observes committed mutations and invalidates itself.
	svc := lifecycle.NewService(db, contentStore, revisionStore, auditStore, contentCache)

	// Start the background scheduler: scheduled publishing, trash purge,
	// session cleanup. It stops when the shutdown context is cancelled.
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	sched := scheduler.New(contentStore, sessionStore, nil, scheduler.DefaultInterval)
	go sched.Run(schedCtx)

	// Create handler groups and the router.
	secureCookies := !cfg.IsDev()
	authHandlers := handlers.NewAuth(userStore, sessionStore, secureCookies)
	contentHandlers := handlers.NewContent(svc, contentCache)
	auditHandlers := handlers.NewAudit(auditStore)

	r := router.New(sessionStore, authHandlers, contentHandlers, auditHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
