// Package main is the entry point for the TreeCrest category service.
// It loads configuration, connects to services, loads the category forest,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treecrest/internal/cache"
	"treecrest/internal/catalog"
	"treecrest/internal/config"
	"treecrest/internal/database"
	"treecrest/internal/events"
	"treecrest/internal/handlers"
	"treecrest/internal/hierarchy"
	"treecrest/internal/router"
	"treecrest/internal/store"
)

func main() {
	// Structured logger — outputs text; level debug so cache hits are visible
	// in development.
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
		"max_depth", cfg.MaxDepth,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
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

	// Connect to Valkey for the event sink and the scope cache. The service
	// works without it: events fall back to the log, scopes go uncached.
	var sink events.Sink = events.LogSink{}
	var scopeCache *cache.ScopeCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable — events go to the log, scope cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		sink = events.NewValkeySink(valkeyClient, cfg.EventStream)
		scopeCache = cache.NewScopeCache(valkeyClient, cache.DefaultScopeTTL)
	}

	// Initialize data stores and collaborators.
	categoryStore := store.NewCategoryStore(db)
	catalogStore := catalog.NewStore(db)

	// Build the hierarchy engine and load the forest.
	engine := hierarchy.NewService(categoryStore, sink,
		hierarchy.WithMaxDepth(cfg.MaxDepth),
		hierarchy.WithItemCounter(catalogStore),
	)
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := engine.Load(startCtx); err != nil {
		cancelStart()
		slog.Error("failed to load category forest", "error", err)
		os.Exit(1)
	}
	cancelStart()
	slog.Info("category forest loaded", "categories", len(engine.Snapshot()))

	// Create handlers and wire the router.
	categoryHandlers := handlers.NewCategories(engine, catalogStore, scopeCache)
	r := router.New(categoryHandlers, cfg.APITokenHash)

	// Create the HTTP server with sensible timeouts. Archive and move
	// cascades are synchronous but bounded by the depth cap, so the default
	// write timeout has plenty of headroom.
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

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
