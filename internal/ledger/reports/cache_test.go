package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/gharbeti/gharbeti/internal/testing/guard"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	filter := StatementFilter{FiscalYear: 2082, FiscalMonth: 1}
	key, err := cache.BuildKey(ctx, "reports", "summary", filter.Fingerprint())
	require.NoError(t, err)

	_, ok := cache.GetSummary(ctx, key)
	require.False(t, ok)

	want := AccountSummary{
		Accounts: []AccountActivity{
			{Code: "1200", Name: "Accounts Receivable", TotalDebit: 15000, Net: 15000, EntryCount: 1},
		},
		GrandTotal: Summary{TotalDebit: 15000, TotalCredit: 15000},
	}
	require.NoError(t, cache.SetSummary(ctx, key, want))

	got, ok := cache.GetSummary(ctx, key)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestCacheInvalidateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	before, err := cache.Version(ctx)
	require.NoError(t, err)

	key, err := cache.BuildKey(ctx, "reports", "summary", "t0:p0")
	require.NoError(t, err)
	require.NoError(t, cache.SetSummary(ctx, key, AccountSummary{GrandTotal: Summary{TotalDebit: 1}}))

	require.NoError(t, cache.Invalidate(ctx))

	after, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Greater(t, after, before)

	// Keys built after invalidation no longer see the stale summary.
	fresh, err := cache.BuildKey(ctx, "reports", "summary", "t0:p0")
	require.NoError(t, err)
	require.NotEqual(t, key, fresh)
	_, ok := cache.GetSummary(ctx, fresh)
	require.False(t, ok)
}

func TestCacheNilSafe(t *testing.T) {
	ctx := context.Background()
	var cache *Cache

	key, err := cache.BuildKey(ctx, "reports", "summary", "x")
	require.NoError(t, err)
	require.Equal(t, "reports:summary:x", key)

	_, ok := cache.GetSummary(ctx, key)
	require.False(t, ok)
	require.NoError(t, cache.SetSummary(ctx, key, AccountSummary{}))
	require.NoError(t, cache.Invalidate(ctx))
}
