package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const suppressedKeyPrefix = "push:token:suppressed:"

// SuppressionCache marks device tokens the provider rejected as
// unregistered so resolveRecipient can skip them without a store read.
type SuppressionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuppressionCache(client *redis.Client, ttl time.Duration) *SuppressionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SuppressionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SuppressionCache) Close() error {
	return c.client.Close()
}

// IsSuppressed returns true if the token is currently marked invalid.
func (c *SuppressionCache) IsSuppressed(ctx context.Context, token string) (bool, error) {
	exists, err := c.client.Exists(ctx, suppressedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// Suppress stores the token with a TTL; re-registration produces a fresh
// token, so entries only need to outlive stale replays.
func (c *SuppressionCache) Suppress(ctx context.Context, token string) error {
	return c.client.SetEX(ctx, suppressedKeyPrefix+token, "1", c.ttl).Err()
}
