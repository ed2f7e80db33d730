package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/venewatch/venezuela-monitor/internal/ai"
	"github.com/venewatch/venezuela-monitor/internal/models"
)

const bucketLimit = 10

// Store is the slice of persistence the report generator needs.
type Store interface {
	FindNewsItemsInRange(ctx context.Context, start, end time.Time) ([]models.NewsItem, error)
	SaveReport(ctx context.Context, report models.DailyReport) error
}

// Analyst produces the narrative block. Degrades internally, never fails.
type Analyst interface {
	GenerateDailyAnalysis(ctx context.Context, items []ai.AnalysisItem) ai.DailyAnalysis
}

// Generator builds the daily digest report.
type Generator struct {
	store   Store
	analyst Analyst
	clock   func() time.Time
	log     *slog.Logger
}

// New builds a report generator.
func New(store Store, analyst Analyst, clock func() time.Time, log *slog.Logger) *Generator {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Generator{store: store, analyst: analyst, clock: clock, log: log}
}

// GenerateDailyReport aggregates one calendar day of news items into a
// digest. Returns (nil, nil) when the day has no items. Regenerating a
// date that already has a report overwrites it.
func (g *Generator) GenerateDailyReport(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	start := startOfDay(date)
	end := endOfDay(date)

	items, err := g.store.FindNewsItemsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("query day items: %w", err)
	}
	if len(items) == 0 {
		g.log.Info("no news items for date, skipping report",
			slog.String("date", start.Format("2006-01-02")),
		)
		return nil, nil
	}

	// Items arrive newest first, so bucket truncation keeps the most
	// recent ten per section.
	buckets := map[models.NewsCategory][]string{}
	for _, item := range items {
		if item.Category == models.CategoryAnalysis {
			continue
		}
		buckets[item.Category] = append(buckets[item.Category], item.ID)
	}

	projections := make([]ai.AnalysisItem, 0, len(items))
	for _, item := range items {
		projections = append(projections, ai.AnalysisItem{
			Title:    item.Title,
			Summary:  item.Summary,
			Category: item.Category,
			Severity: item.Severity,
		})
	}
	analysis := g.analyst.GenerateDailyAnalysis(ctx, projections)

	now := g.clock()
	dailyReport := models.DailyReport{
		ID:                start.Format("2006-01-02"),
		Date:              start,
		Summary:           analysis.Summary,
		KeyEvents:         truncateBucket(buckets[models.CategoryKeyEvents]),
		PoliticalUpdates:  truncateBucket(buckets[models.CategoryPolitical]),
		EconomicSituation: truncateBucket(buckets[models.CategoryEconomic]),
		SocialIssues:      truncateBucket(buckets[models.CategorySocial]),
		Trends:            analysis.Trends,
		Implications:      analysis.Implications,
		Recommendations:   analysis.Recommendations,
		Statistics:        calculateStatistics(items),
		GeneratedAt:       now,
	}

	if err := g.store.SaveReport(ctx, dailyReport); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	g.log.Info("daily report generated",
		slog.String("date", dailyReport.ID),
		slog.Int("items", len(items)),
	)
	return &dailyReport, nil
}

// calculateStatistics counts the full item set; buckets are truncated,
// statistics are not.
func calculateStatistics(items []models.NewsItem) models.ReportStatistics {
	stats := models.ReportStatistics{
		TotalItems: len(items),
		ByPlatform: map[string]int{},
		ByCategory: map[string]int{},
		BySeverity: map[string]int{},
	}
	for _, item := range items {
		stats.ByPlatform[string(item.Platform)]++
		stats.ByCategory[string(item.Category)]++
		stats.BySeverity[string(item.Severity)]++
	}
	return stats
}

func truncateBucket(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	if len(ids) > bucketLimit {
		return ids[:bucketLimit]
	}
	return ids
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
