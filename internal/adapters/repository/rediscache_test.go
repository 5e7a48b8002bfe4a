package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	repository "github.com/airtime-fit/airtime/internal/adapters/repository"
	types "github.com/airtime-fit/airtime/internal/domain/types"
)

// cacheClient connects to the Redis named by AIRTIME_TEST_REDIS_ADDR, or
// skips the test when the variable is unset.
func cacheClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("AIRTIME_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AIRTIME_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewLeaderboardCache(cacheClient(t),
		repository.WithCachePrefix("airtime-test"),
		repository.WithCacheTTL(time.Minute),
	)
	t.Cleanup(func() { _ = cache.Invalidate(ctx) })

	entries := []types.LeaderboardEntry{
		{Rank: 1, UserID: "u1", BestHeightInWindow: 34.8, PersonalBestAt: time.Now().UTC().Truncate(time.Second)},
		{Rank: 2, UserID: "u2", BestHeightInWindow: 33.5, PersonalBestAt: time.Now().UTC().Truncate(time.Second)},
	}

	// Miss before the first Set.
	_, ok, err := cache.Get(ctx, 7, 10)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, 7, 10, entries))

	got, ok, err := cache.Get(ctx, 7, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entries, got)

	// Different (window, limit) pairs are independent keys.
	_, ok, err = cache.Get(ctx, 30, 10)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx, 7, 10)
	require.NoError(t, err)
	require.False(t, ok)
}
