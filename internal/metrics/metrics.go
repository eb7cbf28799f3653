// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footy_rate_limit_rejections_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)

	// Upstream data sources
	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footy_upstream_fetch_duration_seconds",
			Help:    "Time spent fetching a dataset from a provider",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "dataset"},
	)

	UpstreamFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_upstream_fetch_errors_total",
			Help: "Failed dataset fetches by provider",
		},
		[]string{"provider", "dataset"},
	)

	UpstreamRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_upstream_rows_total",
			Help: "Rows returned by providers",
		},
		[]string{"provider", "dataset"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footy_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Response cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footy_cache_lookups_total",
			Help: "Response cache lookups by result (hit, miss, stale, bypass)",
		},
		[]string{"result"},
	)

	// R bridge
	RPackageUpToDate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footy_r_package_up_to_date",
			Help: "1 when the installed R data package matches the latest CRAN release",
		},
	)
)
