package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

type fakePruner struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepUsesRetentionCutoff(t *testing.T) {
	pruner := &fakePruner{deleted: 12}
	m := metrics.New()
	c := NewCleanup(pruner, 7*24*time.Hour, time.Hour, m, testLogger())

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Sweep(context.Background())

	assert.Len(t, pruner.cutoffs, 1)
	assert.Equal(t, now.Add(-7*24*time.Hour), pruner.cutoffs[0])
	assert.Equal(t, int64(12), m.Snapshot()["cleaned"])
}

func TestSweepToleratesStoreErrors(t *testing.T) {
	pruner := &fakePruner{err: errors.New("db down")}
	m := metrics.New()
	c := NewCleanup(pruner, time.Hour, time.Hour, m, testLogger())

	c.Sweep(context.Background())

	assert.Equal(t, int64(0), m.Snapshot()["cleaned"])
}

func TestRunSweepsImmediatelyThenStops(t *testing.T) {
	pruner := &fakePruner{}
	c := NewCleanup(pruner, time.Hour, time.Hour, metrics.New(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	assert.Len(t, pruner.cutoffs, 1)
}

func TestNewCleanupDefaults(t *testing.T) {
	c := NewCleanup(&fakePruner{}, 0, 0, metrics.New(), testLogger())
	assert.Equal(t, 7*24*time.Hour, c.age)
	assert.Equal(t, 24*time.Hour, c.interval)
}
