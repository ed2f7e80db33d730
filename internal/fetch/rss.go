package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/venewatch/venezuela-monitor/internal/models"
)

const googleNewsSearchURL = "https://news.google.com/rss/search"

// RSSAdapter collects news coverage from Google News query feeds plus any
// explicitly configured outlet feeds.
type RSSAdapter struct {
	parser  *gofeed.Parser
	queries []string
	feeds   []string
	timeout time.Duration
	log     *slog.Logger
}

var _ Adapter = (*RSSAdapter)(nil)

// NewRSSAdapter builds the news adapter. queries become Google News RSS
// searches; feeds are fetched as-is.
func NewRSSAdapter(queries, feeds []string, timeout time.Duration, log *slog.Logger) *RSSAdapter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RSSAdapter{
		parser:  gofeed.NewParser(),
		queries: queries,
		feeds:   feeds,
		timeout: timeout,
		log:     log,
	}
}

// Platform implements Adapter.
func (a *RSSAdapter) Platform() models.Platform { return models.PlatformNews }

// Fetch pulls every configured feed. A single feed failure is logged and
// skipped; whatever the other feeds produced is still returned.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]models.CandidateItem, error) {
	urls := make([]string, 0, len(a.queries)+len(a.feeds))
	for _, q := range a.queries {
		urls = append(urls, googleNewsQueryURL(q))
	}
	urls = append(urls, a.feeds...)

	var items []models.CandidateItem
	var failed int
	for _, feedURL := range urls {
		feedItems, err := a.fetchFeed(ctx, feedURL)
		if err != nil {
			failed++
			a.log.Warn("rss feed failed", slog.String("url", feedURL), slog.Any("err", err))
			continue
		}
		items = append(items, feedItems...)
	}

	if failed == len(urls) && len(urls) > 0 {
		return items, fmt.Errorf("all %d rss feeds failed", failed)
	}
	return items, nil
}

func (a *RSSAdapter) fetchFeed(ctx context.Context, feedURL string) ([]models.CandidateItem, error) {
	feedCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	feed, err := a.parser.ParseURLWithContext(feedURL, feedCtx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]models.CandidateItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		candidate, ok := a.mapEntry(feed, entry)
		if !ok {
			continue
		}
		items = append(items, candidate)
	}
	return items, nil
}

func (a *RSSAdapter) mapEntry(feed *gofeed.Feed, entry *gofeed.Item) (models.CandidateItem, bool) {
	link := strings.TrimSpace(entry.Link)
	title := strings.TrimSpace(entry.Title)
	if link == "" || title == "" {
		return models.CandidateItem{}, false
	}

	content := entry.Content
	if content == "" {
		content = entry.Description
	}
	content = strings.TrimSpace(content)
	if content == "" {
		content = title
	}

	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	}

	sourceName := strings.TrimSpace(feed.Title)
	if sourceName == "" {
		sourceName = "rss"
	}

	item := models.CandidateItem{
		Title:       title,
		Content:     content,
		SourceURL:   link,
		SourceName:  sourceName,
		PublishedAt: published,
		Platform:    models.PlatformNews,
	}
	if entry.Image != nil {
		item.ImageURL = entry.Image.URL
	}
	return item, true
}

func googleNewsQueryURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	return googleNewsSearchURL + "?" + params.Encode()
}
