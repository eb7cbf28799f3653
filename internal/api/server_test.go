package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-data/internal/api/handler"
	"github.com/albapepper/footy-data/internal/cache"
	"github.com/albapepper/footy-data/internal/config"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

type recordingFetcher struct {
	mu      sync.Mutex
	queries []footy.Query
}

func (f *recordingFetcher) Fetch(_ context.Context, q footy.Query) (*frame.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	out := frame.New()
	_ = out.AddColumn("dataset", []any{string(q.Dataset)})
	return out, nil
}

func (f *recordingFetcher) last() footy.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:       "development",
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  false,
		RateLimitRequests: 60,
		RateLimitWindow:   time.Minute,
	}
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	ff := &recordingFetcher{}
	r := NewRouter(handler.Deps{Fetcher: ff, Cache: cache.New(false)}, testConfig(), nil)

	tests := []struct {
		target  string
		dataset footy.Dataset
	}{
		{"/fixture", footy.Fixture},
		{"/fixture/2023", footy.Fixture},
		{"/fixture/2023/4", footy.Fixture},
		{"/ladder/2023/4", footy.Ladder},
		{"/lineup/2024/1", footy.Lineup},
		{"/player_details/Carlton", footy.PlayerDetails},
		{"/player_statistics/2024/2", footy.PlayerStats},
		{"/player_stats?season=2022", footy.PlayerStats},
		{"/results/2022", footy.Results},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(t, r, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.dataset, ff.last().Dataset)
			assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
		})
	}
}

func TestNotFoundIsStructured(t *testing.T) {
	r := NewRouter(handler.Deps{Fetcher: &recordingFetcher{}}, testConfig(), nil)

	rec := serve(t, r, "/standings")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"No route for /standings"}}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRequests = 2
	r := NewRouter(handler.Deps{Fetcher: &recordingFetcher{}}, cfg, nil)

	// Burst is half the window allowance.
	assert.Equal(t, http.StatusOK, serve(t, r, "/fixture").Code)
	rec := serve(t, r, "/fixture")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// Health checks are outside the limiter.
	assert.Equal(t, http.StatusOK, serve(t, r, "/health").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewRouter(handler.Deps{Fetcher: &recordingFetcher{}}, testConfig(), nil)
	serve(t, r, "/ladder")

	rec := serve(t, r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "footy_http_requests_total")
}
