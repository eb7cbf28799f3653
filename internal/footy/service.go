package footy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/albapepper/footy-data/internal/frame"
	"github.com/albapepper/footy-data/internal/metrics"
)

// Provider fetches datasets from one upstream.
type Provider interface {
	// Name is the source this provider serves natively ("AFL", "squiggle"),
	// or a descriptive name for a catch-all provider.
	Name() string
	Supports(d Dataset) bool
	Fetch(ctx context.Context, q Query) (*frame.Frame, error)
}

// Fetcher is what the HTTP and CLI layers depend on.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*frame.Frame, error)
}

// Service routes queries to providers. Sources with a native provider go
// there; everything else goes to the fallback (the R bridge) when one is
// configured.
type Service struct {
	native   map[string]Provider
	fallback Provider
	breakers map[string]*gobreaker.CircuitBreaker[*frame.Frame]
	group    singleflight.Group
	logger   *slog.Logger
}

// NewService creates a service. fallback may be nil.
func NewService(logger *slog.Logger, fallback Provider, providers ...Provider) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		native:   make(map[string]Provider),
		fallback: fallback,
		breakers: make(map[string]*gobreaker.CircuitBreaker[*frame.Frame]),
		logger:   logger,
	}
	for _, p := range providers {
		s.native[p.Name()] = p
		s.breakers[p.Name()] = newBreaker(p.Name(), logger)
	}
	if fallback != nil {
		s.breakers[fallback.Name()] = newBreaker(fallback.Name(), logger)
	}
	return s
}

// Resolve picks the provider for a query.
func (s *Service) Resolve(q Query) (Provider, error) {
	if p, ok := s.native[q.Source]; ok && p.Supports(q.Dataset) {
		return p, nil
	}
	if s.fallback != nil && s.fallback.Supports(q.Dataset) {
		return s.fallback, nil
	}
	return nil, fmt.Errorf("%s from %s: %w", q.Dataset, q.Source, ErrSourceUnavailable)
}

// Fetch returns the dataset for q. Identical in-flight queries share one
// upstream call; the shared call is detached from any single caller's
// cancellation.
func (s *Service) Fetch(ctx context.Context, q Query) (*frame.Frame, error) {
	p, err := s.Resolve(q)
	if err != nil {
		return nil, err
	}

	ch := s.group.DoChan(p.Name()+"|"+q.Key(), func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), p, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*frame.Frame), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) fetch(ctx context.Context, p Provider, q Query) (*frame.Frame, error) {
	start := time.Now()
	f, err := s.breakers[p.Name()].Execute(func() (*frame.Frame, error) {
		return p.Fetch(ctx, q)
	})
	elapsed := time.Since(start)
	metrics.UpstreamFetchDuration.WithLabelValues(p.Name(), string(q.Dataset)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(p.Name(), string(q.Dataset)).Inc()
		s.logger.Warn("Fetch failed",
			"provider", p.Name(), "dataset", q.Dataset, "source", q.Source,
			"season", q.Season, "round", q.RoundString(), "error", err)
		return nil, fmt.Errorf("%s %s: %w", p.Name(), q.Dataset, err)
	}
	if f == nil {
		f = frame.New()
	}

	metrics.UpstreamRows.WithLabelValues(p.Name(), string(q.Dataset)).Add(float64(f.NRow()))
	s.logger.Debug("Fetched dataset",
		"provider", p.Name(), "dataset", q.Dataset, "source", q.Source,
		"season", q.Season, "round", q.RoundString(),
		"rows", f.NRow(), "cols", f.NCol(),
		"duration", elapsed.Round(time.Millisecond))
	return f, nil
}

// Routes maps every source of every dataset to the provider that serves it
// ("" when none does).
func (s *Service) Routes() map[string]map[string]string {
	out := make(map[string]map[string]string, len(Datasets))
	for _, d := range Datasets {
		m := make(map[string]string)
		for _, src := range AllowedSources(d) {
			p, err := s.Resolve(Query{Dataset: d, Source: src})
			if err != nil {
				m[src] = ""
				continue
			}
			m[src] = p.Name()
		}
		out[string(d)] = m
	}
	return out
}

// BreakerStates reports the circuit state per provider.
func (s *Service) BreakerStates() map[string]string {
	out := make(map[string]string, len(s.breakers))
	for n, b := range s.breakers {
		out[n] = b.State().String()
	}
	return out
}
