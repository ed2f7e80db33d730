package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venewatch/venezuela-monitor/internal/dedupe"
)

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.Seen("https://example.com/a"))
	cache.Mark("https://example.com/a")
	require.True(t, cache.Seen("https://example.com/a"))
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.NewCache(10, 20*time.Millisecond)
	cache.Mark("https://example.com/b")
	time.Sleep(25 * time.Millisecond)
	require.False(t, cache.Seen("https://example.com/b"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	cache.Mark("https://example.com/first")
	cache.Mark("https://example.com/second")

	require.False(t, cache.Seen("https://example.com/first"))
	require.True(t, cache.Seen("https://example.com/second"))
}
