package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venewatch/venezuela-monitor/internal/ai"
	"github.com/venewatch/venezuela-monitor/internal/models"
)

type memoryStore struct {
	items   []models.NewsItem
	reports map[string]models.DailyReport
}

func newMemoryStore(items ...models.NewsItem) *memoryStore {
	return &memoryStore{items: items, reports: map[string]models.DailyReport{}}
}

func (m *memoryStore) FindNewsItemsInRange(_ context.Context, start, end time.Time) ([]models.NewsItem, error) {
	var matched []models.NewsItem
	for _, item := range m.items {
		ts := item.PublishedAt
		if !ts.Before(start) && !ts.After(end) {
			matched = append(matched, item)
		}
	}
	// Storage contract: newest first.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	return matched, nil
}

func (m *memoryStore) SaveReport(_ context.Context, report models.DailyReport) error {
	m.reports[report.ID] = report
	return nil
}

type stubAnalyst struct {
	analysis ai.DailyAnalysis
	received []ai.AnalysisItem
}

func (s *stubAnalyst) GenerateDailyAnalysis(_ context.Context, items []ai.AnalysisItem) ai.DailyAnalysis {
	s.received = items
	return s.analysis
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newsItem(id string, category models.NewsCategory, published time.Time) models.NewsItem {
	return models.NewsItem{
		ID:          id,
		Title:       "title " + id,
		Summary:     "summary " + id,
		Category:    category,
		Platform:    models.PlatformNews,
		SourceURL:   "https://example.com/" + id,
		PublishedAt: published,
		Severity:    models.SeverityLow,
		Sentiment:   models.SentimentNeutral,
	}
}

var day = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestGenerateDailyReportEmptyWindow(t *testing.T) {
	store := newMemoryStore()
	gen := New(store, &stubAnalyst{}, nil, testLogger())

	got, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Empty(t, store.reports)
}

func TestGenerateDailyReportWindowBoundaries(t *testing.T) {
	startOfDay := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore(
		newsItem("at-start", models.CategoryKeyEvents, startOfDay),
		newsItem("before-start", models.CategoryKeyEvents, startOfDay.Add(-time.Millisecond)),
		newsItem("end-of-day", models.CategoryKeyEvents, startOfDay.Add(24*time.Hour-time.Millisecond)),
		newsItem("next-day", models.CategoryKeyEvents, startOfDay.Add(24*time.Hour)),
	)
	analyst := &stubAnalyst{analysis: ai.DailyAnalysis{Summary: "summary"}}
	gen := New(store, analyst, nil, testLogger())

	got, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, 2, got.Statistics.TotalItems)
	require.ElementsMatch(t, []string{"at-start", "end-of-day"}, got.KeyEvents)
}

func TestGenerateDailyReportBuckets(t *testing.T) {
	store := newMemoryStore(
		newsItem("k1", models.CategoryKeyEvents, day),
		newsItem("p1", models.CategoryPolitical, day.Add(time.Minute)),
		newsItem("e1", models.CategoryEconomic, day.Add(2*time.Minute)),
		newsItem("s1", models.CategorySocial, day.Add(3*time.Minute)),
		newsItem("a1", models.CategoryAnalysis, day.Add(4*time.Minute)),
	)
	analyst := &stubAnalyst{analysis: ai.DailyAnalysis{
		Summary:         "A quiet day.",
		Trends:          []string{"t"},
		Implications:    []string{"i"},
		Recommendations: []string{"r"},
	}}
	gen := New(store, analyst, nil, testLogger())

	got, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, []string{"k1"}, got.KeyEvents)
	require.Equal(t, []string{"p1"}, got.PoliticalUpdates)
	require.Equal(t, []string{"e1"}, got.EconomicSituation)
	require.Equal(t, []string{"s1"}, got.SocialIssues)

	// Analysis items are excluded from buckets but counted in stats.
	require.Equal(t, 5, got.Statistics.TotalItems)
	require.Equal(t, 1, got.Statistics.ByCategory["analysis"])

	require.Equal(t, "A quiet day.", got.Summary)
	require.Equal(t, []string{"t"}, got.Trends)

	// Persisted under the date key.
	require.Contains(t, store.reports, "2025-06-15")
}

func TestGenerateDailyReportBucketTruncation(t *testing.T) {
	var items []models.NewsItem
	for i := 0; i < 15; i++ {
		items = append(items, newsItem(
			fmt.Sprintf("k%02d", i),
			models.CategoryKeyEvents,
			day.Add(time.Duration(i)*time.Minute),
		))
	}
	store := newMemoryStore(items...)
	analyst := &stubAnalyst{analysis: ai.DailyAnalysis{Summary: "s"}}
	gen := New(store, analyst, nil, testLogger())

	got, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, got.KeyEvents, 10)

	// Most recent first: k14 down to k05.
	require.Equal(t, "k14", got.KeyEvents[0])
	require.Equal(t, "k05", got.KeyEvents[9])

	// Statistics cover the full set, not the truncated bucket.
	require.Equal(t, 15, got.Statistics.TotalItems)
}

func TestGenerateDailyReportProjectionExcludesContent(t *testing.T) {
	item := newsItem("k1", models.CategoryKeyEvents, day)
	item.Content = "full content must not reach the prompt"
	store := newMemoryStore(item)
	analyst := &stubAnalyst{analysis: ai.DailyAnalysis{Summary: "s"}}
	gen := New(store, analyst, nil, testLogger())

	_, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)

	require.Len(t, analyst.received, 1)
	require.Equal(t, "title k1", analyst.received[0].Title)
	require.Equal(t, "summary k1", analyst.received[0].Summary)
}

func TestGenerateDailyReportOverwritesExisting(t *testing.T) {
	store := newMemoryStore(newsItem("k1", models.CategoryKeyEvents, day))
	analyst := &stubAnalyst{analysis: ai.DailyAnalysis{Summary: "first"}}
	gen := New(store, analyst, nil, testLogger())

	_, err := gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)

	analyst.analysis = ai.DailyAnalysis{Summary: "second"}
	_, err = gen.GenerateDailyReport(context.Background(), day)
	require.NoError(t, err)

	require.Len(t, store.reports, 1)
	require.Equal(t, "second", store.reports["2025-06-15"].Summary)
}
