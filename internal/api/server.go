package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/footy-data/internal/api/handler"
	"github.com/albapepper/footy-data/internal/api/respond"
	"github.com/albapepper/footy-data/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	deps.Config = cfg
	deps.Logger = logger

	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag", "X-Footy-Warning", "X-Snapshot-Fetched-At"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := handler.New(deps)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks and metrics are not rate limited.
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
		r.Get("/r", h.HealthCheckR)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
	))

	// Datasets: query-parameter and path-parameter schemes
	r.Group(func(r chi.Router) {
		if cfg.RateLimitEnabled {
			r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Route("/fixture", func(r chi.Router) {
			r.Get("/", h.GetFixture)
			r.Get("/{season}", h.GetFixture)
			r.Get("/{season}/{round_number}", h.GetFixture)
		})
		r.Route("/ladder", func(r chi.Router) {
			r.Get("/", h.GetLadder)
			r.Get("/{season}", h.GetLadder)
			r.Get("/{season}/{round_number}", h.GetLadder)
		})
		r.Route("/lineup", func(r chi.Router) {
			r.Get("/", h.GetLineup)
			r.Get("/{season}/{round_number}", h.GetLineup)
		})
		r.Route("/player_details", func(r chi.Router) {
			r.Get("/", h.GetPlayerDetails)
			r.Get("/{team}", h.GetPlayerDetails)
		})
		for _, base := range []string{"/player_statistics", "/player_stats"} {
			r.Route(base, func(r chi.Router) {
				r.Get("/", h.GetPlayerStats)
				r.Get("/{season}", h.GetPlayerStats)
				r.Get("/{season}/{round_number}", h.GetPlayerStats)
			})
		}
		r.Route("/results", func(r chi.Router) {
			r.Get("/", h.GetResults)
			r.Get("/{season}", h.GetResults)
			r.Get("/{season}/{round_number}", h.GetResults)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}
