package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

// NotificationPruner deletes dispatch records older than a cutoff.
type NotificationPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleanup periodically removes notifications past the retention age. The
// dispatcher itself never deletes; this sweep is the only deletion path.
type Cleanup struct {
	store    NotificationPruner
	age      time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewCleanup(store NotificationPruner, age, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Cleanup {
	if age <= 0 {
		age = 7 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Cleanup{
		store:    store,
		age:      age,
		interval: interval,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until the context ends.
func (c *Cleanup) Run(ctx context.Context) {
	c.Sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep deletes everything older than the retention cutoff.
func (c *Cleanup) Sweep(ctx context.Context) {
	cutoff := c.now().Add(-c.age)
	deleted, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.Error("notification cleanup failed", slog.Any("error", err))
		return
	}
	c.metrics.AddCleaned(deleted)
	c.logger.Info("cleaned up old notifications",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff))
}
