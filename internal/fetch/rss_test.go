package fetch

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"github.com/venewatch/venezuela-monitor/internal/models"
)

func TestRSSAdapterMapEntry(t *testing.T) {
	adapter := NewRSSAdapter(nil, nil, time.Second, testLogger())
	published := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	feed := &gofeed.Feed{Title: "El Universal"}

	entry := &gofeed.Item{
		Title:           "Sanctions extended",
		Description:     "Washington extended sanctions for another year.",
		Link:            "https://example.com/sanctions",
		PublishedParsed: &published,
	}

	item, ok := adapter.mapEntry(feed, entry)
	require.True(t, ok)
	require.Equal(t, "Sanctions extended", item.Title)
	require.Equal(t, "Washington extended sanctions for another year.", item.Content)
	require.Equal(t, "https://example.com/sanctions", item.SourceURL)
	require.Equal(t, "El Universal", item.SourceName)
	require.Equal(t, published, item.PublishedAt)
	require.Equal(t, models.PlatformNews, item.Platform)
}

func TestRSSAdapterMapEntryDefaults(t *testing.T) {
	adapter := NewRSSAdapter(nil, nil, time.Second, testLogger())

	// No content, no description: title backfills content. No feed
	// title: source name falls back. No published date: now is used.
	item, ok := adapter.mapEntry(&gofeed.Feed{}, &gofeed.Item{
		Title: "Headline only",
		Link:  "https://example.com/h",
	})
	require.True(t, ok)
	require.Equal(t, "Headline only", item.Content)
	require.Equal(t, "rss", item.SourceName)
	require.False(t, item.PublishedAt.IsZero())
}

func TestRSSAdapterMapEntrySkipsIncomplete(t *testing.T) {
	adapter := NewRSSAdapter(nil, nil, time.Second, testLogger())

	_, ok := adapter.mapEntry(&gofeed.Feed{}, &gofeed.Item{Title: "no link"})
	require.False(t, ok)

	_, ok = adapter.mapEntry(&gofeed.Feed{}, &gofeed.Item{Link: "https://example.com/untitled"})
	require.False(t, ok)
}

func TestGoogleNewsQueryURL(t *testing.T) {
	got := googleNewsQueryURL("Venezuela crisis")
	require.Contains(t, got, "https://news.google.com/rss/search?")
	require.Contains(t, got, "q=Venezuela+crisis")
	require.Contains(t, got, "hl=en-US")
}
