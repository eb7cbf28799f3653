package footy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-data/internal/frame"
)

type fakeProvider struct {
	name     string
	datasets []Dataset
	calls    atomic.Int32
	err      error
	block    chan struct{}
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Supports(d Dataset) bool {
	for _, s := range p.datasets {
		if s == d {
			return true
		}
	}
	return false
}

func (p *fakeProvider) Fetch(ctx context.Context, q Query) (*frame.Frame, error) {
	p.calls.Add(1)
	if p.block != nil {
		<-p.block
	}
	if p.err != nil {
		return nil, p.err
	}
	f := frame.New()
	_ = f.AddColumn("provider", []any{p.name})
	_ = f.AddColumn("season", []any{q.Season})
	return f, nil
}

func TestServiceRoutesToNativeProvider(t *testing.T) {
	afl := &fakeProvider{name: SourceAFL, datasets: Datasets}
	r := &fakeProvider{name: "fitzRoy", datasets: Datasets}
	svc := NewService(nil, r, afl)

	f, err := svc.Fetch(context.Background(), Query{Dataset: Ladder, Source: SourceAFL, Season: 2024})
	require.NoError(t, err)
	assert.Equal(t, SourceAFL, f.Value(0, "provider"))
	assert.EqualValues(t, 1, afl.calls.Load())
	assert.EqualValues(t, 0, r.calls.Load())
}

func TestServiceFallsBackForUnsupportedDataset(t *testing.T) {
	squiggle := &fakeProvider{name: SourceSquiggle, datasets: []Dataset{Fixture, Ladder, Results}}
	r := &fakeProvider{name: "fitzRoy", datasets: Datasets}
	svc := NewService(nil, r, squiggle)

	p, err := svc.Resolve(Query{Dataset: PlayerStats, Source: SourceSquiggle})
	require.NoError(t, err)
	assert.Equal(t, "fitzRoy", p.Name())

	p, err = svc.Resolve(Query{Dataset: Results, Source: SourceFootywire})
	require.NoError(t, err)
	assert.Equal(t, "fitzRoy", p.Name())
}

func TestServiceSourceUnavailableWithoutFallback(t *testing.T) {
	svc := NewService(nil, nil, &fakeProvider{name: SourceAFL, datasets: Datasets})

	_, err := svc.Fetch(context.Background(), Query{Dataset: Results, Source: SourceFryzigg})
	require.ErrorIs(t, err, ErrSourceUnavailable)

	routes := svc.Routes()
	assert.Equal(t, SourceAFL, routes["results"][SourceAFL])
	assert.Equal(t, "", routes["results"][SourceFryzigg])
}

func TestServiceWrapsProviderErrors(t *testing.T) {
	boom := errors.New("upstream 500")
	svc := NewService(nil, nil, &fakeProvider{name: SourceAFL, datasets: Datasets, err: boom})

	_, err := svc.Fetch(context.Background(), Query{Dataset: Fixture, Source: SourceAFL})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "AFL fixture")
}

func TestServiceBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := &fakeProvider{name: SourceAFL, datasets: Datasets, err: errors.New("down")}
	svc := NewService(nil, nil, p)

	q := Query{Dataset: Fixture, Source: SourceAFL}
	for i := 0; i < 5; i++ {
		_, err := svc.Fetch(context.Background(), q)
		require.Error(t, err)
	}

	_, err := svc.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.True(t, IsBreakerOpen(err))
	assert.EqualValues(t, 5, p.calls.Load())
	assert.Equal(t, "open", svc.BreakerStates()[SourceAFL])
}

func TestServiceCollapsesConcurrentIdenticalQueries(t *testing.T) {
	p := &fakeProvider{name: SourceAFL, datasets: Datasets, block: make(chan struct{})}
	svc := NewService(nil, nil, p)
	q := Query{Dataset: Ladder, Source: SourceAFL, Season: 2024}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Fetch(context.Background(), q)
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(p.block)
	wg.Wait()
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestServiceFetchHonoursCallerCancellation(t *testing.T) {
	p := &fakeProvider{name: SourceAFL, datasets: Datasets, block: make(chan struct{})}
	svc := NewService(nil, nil, p)
	defer close(p.block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Fetch(ctx, Query{Dataset: Ladder, Source: SourceAFL})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
