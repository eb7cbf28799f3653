package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/footy-data/internal/footy/rbridge"
)

type fakePruner struct {
	calls atomic.Int32
	days  atomic.Int32
	err   error
}

func (p *fakePruner) Prune(_ context.Context, days int) (int64, error) {
	p.calls.Add(1)
	p.days.Store(int32(days))
	return 3, p.err
}

type fakeUpdater struct {
	calls atomic.Int32
}

func (u *fakeUpdater) EnsureLatest(context.Context) (rbridge.PackageStatus, error) {
	u.calls.Add(1)
	return rbridge.PackageStatus{Package: "fitzRoy", Installed: "1.5.0", Available: "1.5.0", UpToDate: true}, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStartRunsTasksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pruner := &fakePruner{}
	updater := &fakeUpdater{}
	cfg := Config{PruneInterval: 5 * time.Millisecond, RetentionDays: 14, RPackageInterval: 5 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		Start(ctx, cfg, pruner, updater, quietLogger())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return pruner.calls.Load() >= 2 && updater.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 14, pruner.days.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStartNilDependenciesDisableTasks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	// Would panic on a nil pruner if the task ran.
	Start(ctx, Config{PruneInterval: time.Millisecond, RPackageInterval: time.Millisecond}, nil, nil, quietLogger())
}

func TestPruneErrorIsLogged(t *testing.T) {
	pruner := &fakePruner{err: errors.New("connection reset")}
	pruneSnapshots(context.Background(), pruner, 30, quietLogger())
	assert.EqualValues(t, 1, pruner.calls.Load())
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan time.Time)
	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		runLoop(ctx, ch, "test", func() { n.Add(1) })
		close(done)
	}()

	ch <- time.Now()
	ch <- time.Now()
	cancel()
	<-done
	assert.EqualValues(t, 2, n.Load())
}
