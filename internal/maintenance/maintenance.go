// Package maintenance runs periodic background tasks as Go tickers:
// snapshot pruning and the R data package update check.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/footy-data/internal/footy/rbridge"
)

// Pruner deletes old snapshots.
type Pruner interface {
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

// PackageUpdater keeps the R data package current.
type PackageUpdater interface {
	EnsureLatest(ctx context.Context) (rbridge.PackageStatus, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval    time.Duration // Snapshot retention sweep
	RetentionDays    int
	RPackageInterval time.Duration // fitzRoy update check
	TaskTimeout      time.Duration
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		PruneInterval:    6 * time.Hour,
		RetentionDays:    30,
		RPackageInterval: 24 * time.Hour,
		TaskTimeout:      15 * time.Minute,
	}
}

// Start launches all configured maintenance tickers. A nil pruner or
// updater disables its task. Blocks until ctx is cancelled. Intended to be
// called with `go`.
func Start(ctx context.Context, cfg Config, pruner Pruner, updater PackageUpdater, logger *slog.Logger) {
	if pruner == nil {
		cfg.PruneInterval = 0
	}
	if updater == nil {
		cfg.RPackageInterval = 0
	}
	logger.Info("Maintenance tickers started",
		"prune", cfg.PruneInterval,
		"retention_days", cfg.RetentionDays,
		"r_package", cfg.RPackageInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Prune: drop snapshots past retention, keeping the newest per query
	if cfg.PruneInterval > 0 {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "prune", func() {
			tctx, cancel := taskContext(ctx, cfg.TaskTimeout)
			defer cancel()
			pruneSnapshots(tctx, pruner, cfg.RetentionDays, logger)
		})
	}

	// R package: install fitzRoy updates as CRAN publishes them
	if cfg.RPackageInterval > 0 {
		t := time.NewTicker(cfg.RPackageInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "r_package", func() {
			tctx, cancel := taskContext(ctx, cfg.TaskTimeout)
			defer cancel()
			updatePackage(tctx, updater, logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func taskContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func pruneSnapshots(ctx context.Context, pruner Pruner, retentionDays int, logger *slog.Logger) {
	n, err := pruner.Prune(ctx, retentionDays)
	if err != nil {
		logger.Warn("Prune: failed to delete old snapshots", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Prune: deleted old snapshots", "count", n, "retention_days", retentionDays)
	}
}

func updatePackage(ctx context.Context, updater PackageUpdater, logger *slog.Logger) {
	st, err := updater.EnsureLatest(ctx)
	if err != nil {
		logger.Warn("R package update failed", "error", err)
		return
	}
	logger.Info("R package checked",
		"package", st.Package, "installed", st.Installed, "available", st.Available, "up_to_date", st.UpToDate)
}
