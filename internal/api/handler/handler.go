// Package handler provides HTTP handlers for all API endpoints.
// Dataset handlers validate parameters, fetch through the footy service and
// pass the encoded frame through the response cache.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/footy-data/internal/api/respond"
	"github.com/albapepper/footy-data/internal/cache"
	"github.com/albapepper/footy-data/internal/config"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/footy/rbridge"
	"github.com/albapepper/footy-data/internal/frame"
	"github.com/albapepper/footy-data/internal/snapshot"
)

// SnapshotStore persists the last good frame per query.
type SnapshotStore interface {
	Save(ctx context.Context, q footy.Query, f *frame.Frame) error
	Latest(ctx context.Context, q footy.Query) (*snapshot.Snapshot, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// PackageChecker reports the R data package status.
type PackageChecker interface {
	Status(ctx context.Context) (rbridge.PackageStatus, error)
}

// Deps are the handler dependencies. Snapshots, DB and RPackages are
// optional.
type Deps struct {
	Fetcher   footy.Fetcher
	Cache     *cache.Cache
	Config    *config.Config
	Logger    *slog.Logger
	Snapshots SnapshotStore
	DB        Pinger
	RPackages PackageChecker
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	fetcher   footy.Fetcher
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
	snapshots SnapshotStore
	db        Pinger
	rpkg      PackageChecker
	now       func() time.Time
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Cache == nil {
		d.Cache = cache.New(false)
	}
	return &Handler{
		fetcher:   d.Fetcher,
		cache:     d.Cache,
		cfg:       d.Config,
		logger:    d.Logger,
		snapshots: d.Snapshots,
		db:        d.DB,
		rpkg:      d.RPackages,
		now:       time.Now,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, datasets with their allowed sources, and the provider serving each source.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	datasets := make(map[string]any, len(footy.Datasets))
	for _, d := range footy.Datasets {
		datasets[string(d)] = map[string]any{
			"path":    "/" + string(d),
			"sources": footy.AllowedSources(d),
		}
	}

	info := map[string]any{
		"name":     "Footy Data API",
		"version":  "1.0.0",
		"status":   "running",
		"docs":     "/api/docs/index.html",
		"datasets": datasets,
		"orients":  frame.Orients,
	}
	if h.cfg != nil {
		info["environment"] = h.cfg.Environment
	}
	if rt, ok := h.fetcher.(interface {
		Routes() map[string]map[string]string
	}); ok {
		info["providers"] = rt.Routes()
	}
	respond.WriteJSONObject(w, http.StatusOK, info)
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status, circuit breaker states and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}
	if bs, ok := h.fetcher.(interface{ BreakerStates() map[string]string }); ok {
		body["breakers"] = bs.BreakerStates()
	}
	respond.WriteJSONObject(w, http.StatusOK, body)
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity for the snapshot store.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckR reports the R data package status.
// @Summary R bridge health check
// @Description Reports the installed and latest CRAN versions of the R data package.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/r [get]
func (h *Handler) HealthCheckR(w http.ResponseWriter, r *http.Request) {
	if h.rpkg == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"r_bridge":  "disabled",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	st, err := h.rpkg.Status(r.Context())
	if err != nil {
		h.logger.Warn("R package check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"r_bridge":  "unavailable",
			"error":     "R package check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	status := "healthy"
	if !st.UpToDate {
		status = "degraded"
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    status,
		"r_bridge":  "enabled",
		"package":   st,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
