package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/airtime-fit/airtime/internal/domain/types"
)

// Default cache configuration constants.
const (
	defaultCacheTTL    = 30 * time.Second
	defaultCachePrefix = "airtime"
)

// CacheOption applies a configuration option to the LeaderboardCache.
type CacheOption func(*LeaderboardCache)

// WithCacheTTL sets how long a cached leaderboard page stays fresh.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *LeaderboardCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCachePrefix namespaces the cache keys.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *LeaderboardCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// LeaderboardCache keeps recently computed leaderboard pages in Redis so a
// hot default-window query does not fan in across every user on each read.
// The cache is a projection with a TTL: a miss or a stale entry only costs
// a recompute, never correctness.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewLeaderboardCache wraps an existing Redis client.
func NewLeaderboardCache(client *redis.Client, opts ...CacheOption) *LeaderboardCache {
	c := &LeaderboardCache{
		client: client,
		ttl:    defaultCacheTTL,
		prefix: defaultCachePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LeaderboardCache) key(windowDays, limit int) string {
	return fmt.Sprintf("%s:leaderboard:%dd:%d", c.prefix, windowDays, limit)
}

// Get returns the cached page for (windowDays, limit). ok is false on a
// miss; errors are returned only for transport failures.
func (c *LeaderboardCache) Get(ctx context.Context, windowDays, limit int) ([]types.LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.key(windowDays, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leaderboard cache get: %w", err)
	}
	var entries []types.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return entries, true, nil
}

// Set stores a freshly computed page with the configured TTL.
func (c *LeaderboardCache) Set(ctx context.Context, windowDays, limit int, entries []types.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("leaderboard cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(windowDays, limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("leaderboard cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard page under the prefix.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":leaderboard:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("leaderboard cache invalidate: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("leaderboard cache scan: %w", err)
	}
	return nil
}
