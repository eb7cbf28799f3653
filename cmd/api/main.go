// Command api is the Footy Data API server.
//
// Usage:
//
//	footy-api
//	PORT=8080 footy-api

// @title Footy Data API
// @version 1.0.0
// @description AFL fixtures, ladders, lineups, player details, player statistics and results as row-index keyed JSON.
// @host localhost:5000
// @BasePath /
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/footy-data/internal/api"
	"github.com/albapepper/footy-data/internal/api/handler"
	"github.com/albapepper/footy-data/internal/cache"
	"github.com/albapepper/footy-data/internal/config"
	"github.com/albapepper/footy-data/internal/db"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/footy/afl"
	"github.com/albapepper/footy-data/internal/footy/rbridge"
	"github.com/albapepper/footy-data/internal/footy/squiggle"
	"github.com/albapepper/footy-data/internal/maintenance"
	"github.com/albapepper/footy-data/internal/snapshot"

	_ "github.com/albapepper/footy-data/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps := handler.Deps{}
	maint := maintenance.DefaultConfig()
	maint.RetentionDays = cfg.SnapshotRetentionDays
	var pruner maintenance.Pruner
	var updater maintenance.PackageUpdater

	// Database is optional: without it there is no stale-snapshot fallback.
	if cfg.HasDatabase() {
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)

		store := snapshot.NewStore(pool.Pool)
		deps.DB = pool
		deps.Snapshots = store
		pruner = store
	} else {
		logger.Info("Snapshot store disabled (no DATABASE_URL)")
	}

	// Native providers
	aflClient := afl.NewClient(cfg.AFLAPIURL, cfg.AFLCFSURL, cfg.UpstreamRequestsPerMinute, cfg.UpstreamTimeout, logger)
	providers := []footy.Provider{
		afl.New(aflClient, 4, logger),
		squiggle.New(cfg.SquiggleURL, cfg.SquiggleUserAgent, cfg.UpstreamRequestsPerMinute, cfg.UpstreamTimeout, logger),
	}

	// R bridge covers every other source
	var fallback footy.Provider
	if cfg.RBridgeEnabled {
		exec := rbridge.Rscript{Path: cfg.RscriptPath, Timeout: cfg.RTimeout}
		fallback = rbridge.New(exec, cfg.RPackage, logger)

		pkgs := rbridge.NewPackageManager(exec, cfg.RPackage, cfg.CRANMirror, logger)
		deps.RPackages = pkgs
		if cfg.RAutoUpdate {
			updater = pkgs
			go func() {
				st, err := pkgs.EnsureLatest(ctx)
				if err != nil {
					logger.Warn("R package check failed", "package", cfg.RPackage, "error", err)
					return
				}
				logger.Info("R package ready", "package", st.Package, "version", st.Installed)
			}()
		}
		logger.Info("R bridge enabled", "rscript", cfg.RscriptPath, "package", cfg.RPackage)
	} else {
		logger.Info("R bridge disabled; non-native sources return 501")
	}

	deps.Fetcher = footy.NewService(logger, fallback, providers...)

	// Initialize cache
	deps.Cache = cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", deps.Cache.Enabled())

	// Start maintenance tickers (snapshot retention, R package updates)
	go maintenance.Start(ctx, maint, pruner, updater, logger)

	// Create router
	router := api.NewRouter(deps, cfg, logger)

	// Create HTTP server. Uncached R calls can take minutes.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Footy Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/api/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
