package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "reports:summary:version"

// Cache stores account summaries in Redis under versioned keys. Invalidation
// bumps the version so stale keys simply expire.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// GetSummary fetches a cached account summary; ok is false on miss.
func (c *Cache) GetSummary(ctx context.Context, key string) (AccountSummary, bool) {
	if c == nil || c.client == nil {
		return AccountSummary{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return AccountSummary{}, false
	}
	var summary AccountSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return AccountSummary{}, false
	}
	return summary, true
}

// SetSummary stores an account summary under key.
func (c *Cache) SetSummary(ctx context.Context, key string, summary AccountSummary) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate bumps the version, orphaning every existing summary key.
// It satisfies the journal poster's Invalidator port.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
