package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Config describes the retry behavior.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFactor   float64
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.JitterFactor <= 0 {
		c.JitterFactor = 0.2
	}
	return c
}

// Do executes fn and retries with exponential backoff until it succeeds,
// attempts are exhausted, or the context is cancelled. Used for startup
// dialing only; event dispatch is single-attempt.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg = cfg.withDefaults()

	backoff := cfg.InitialBackoff
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(jittered(backoff, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return err
}

func jittered(d time.Duration, cfg Config) time.Duration {
	delta := int64(float64(d) * cfg.JitterFactor)
	if delta > 0 {
		d += time.Duration(rand.Int63n(2*delta) - delta)
	}
	if d > cfg.MaxBackoff {
		d = cfg.MaxBackoff
	}
	return d
}
