// Package squiggle provides the native provider for the Squiggle API
// (https://api.squiggle.com.au). Squiggle serves flat JSON records, so the
// provider only builds the query string and hands the records to the frame
// builder.
//
// Squiggle asks every client to identify itself with a User-Agent that
// includes contact details; requests without one may be blocked.
package squiggle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

const (
	DefaultBaseURL   = "https://api.squiggle.com.au/"
	DefaultUserAgent = "footy-data (https://github.com/albapepper/footy-data)"

	gameComplete = 100
)

// Provider serves fixture, ladder and results for the "squiggle" source.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Squiggle provider with rate limiting.
func New(baseURL, userAgent string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

func (p *Provider) Name() string { return footy.SourceSquiggle }

func (p *Provider) Supports(d footy.Dataset) bool {
	switch d {
	case footy.Fixture, footy.Ladder, footy.Results:
		return true
	default:
		return false
	}
}

func (p *Provider) Fetch(ctx context.Context, q footy.Query) (*frame.Frame, error) {
	switch q.Dataset {
	case footy.Fixture:
		recs, err := p.query(ctx, "games", q.Season, q.Round)
		if err != nil {
			return nil, err
		}
		return frame.FromRecords(recs), nil
	case footy.Results:
		recs, err := p.query(ctx, "games", q.Season, q.Round)
		if err != nil {
			return nil, err
		}
		games := frame.FromRecords(recs)
		return games.Filter(func(i int) bool {
			c, ok := frame.Float(games.Value(i, "complete"))
			return ok && int(c) == gameComplete
		}), nil
	case footy.Ladder:
		recs, err := p.query(ctx, "standings", q.Season, q.Round)
		if err != nil {
			return nil, err
		}
		f := frame.FromRecords(recs)
		f.WithConstant("season", q.Season)
		if q.Round != nil {
			f.WithConstant("round_number", *q.Round)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("dataset %q: %w", q.Dataset, footy.ErrSourceUnavailable)
	}
}

// query calls ?q=<kind>;year=<season>[;round=<n>] and returns the records
// held under the key named after kind.
func (p *Provider) query(ctx context.Context, kind string, season int, round *int) ([]map[string]any, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	parts := []string{kind, "year=" + strconv.Itoa(season)}
	if round != nil {
		parts = append(parts, "round="+strconv.Itoa(*round))
	}
	u := p.baseURL + "?q=" + strings.Join(parts, ";")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Squiggle %s returned %d: %s", kind, resp.StatusCode, truncate(body, 200))
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return frame.DecodeRecords(envelope[kind])
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
