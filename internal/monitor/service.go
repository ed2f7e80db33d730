package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/venewatch/venezuela-monitor/internal/ai"
	"github.com/venewatch/venezuela-monitor/internal/dedupe"
	"github.com/venewatch/venezuela-monitor/internal/events"
	"github.com/venewatch/venezuela-monitor/internal/fetch"
	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/textutil"
)

// Store is the slice of persistence the monitoring cycle needs.
type Store interface {
	FindNewsItemBySourceURL(ctx context.Context, sourceURL string) (*models.NewsItem, error)
	SaveNewsItem(ctx context.Context, item models.NewsItem) error
	SaveAlert(ctx context.Context, alert models.Alert) error
}

// Analyst is the slice of the AI layer the cycle needs. Both operations
// degrade internally and never fail.
type Analyst interface {
	Categorize(ctx context.Context, title, content string) ai.ClassificationResult
	Translate(ctx context.Context, text string) string
}

// Deps wires a Service.
type Deps struct {
	Adapters []fetch.Adapter
	Store    Store
	Analyst  Analyst
	Sink     events.Sink
	Cache    *dedupe.Cache
	Clock    func() time.Time
	Log      *slog.Logger
}

// Service runs the fetch -> dedup -> classify -> translate -> persist ->
// alert cycle. A single instance owns the run guard; overlapping
// invocations are dropped, not queued.
type Service struct {
	adapters []fetch.Adapter
	store    Store
	analyst  Analyst
	sink     events.Sink
	cache    *dedupe.Cache
	clock    func() time.Time
	log      *slog.Logger

	running atomic.Bool
}

// New builds a monitoring service.
func New(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	sink := deps.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	cache := deps.Cache
	if cache == nil {
		cache = dedupe.NewCache(20000, 24*time.Hour)
	}

	return &Service{
		adapters: deps.Adapters,
		store:    deps.Store,
		analyst:  deps.Analyst,
		sink:     sink,
		cache:    cache,
		clock:    clock,
		log:      deps.Log,
	}
}

// RunCycle executes one monitoring cycle. When a cycle is already in
// flight the call returns immediately. No error is ever returned to the
// scheduler: every failure inside the cycle is contained per adapter or
// per item.
func (s *Service) RunCycle(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info("monitoring cycle already running, skipping")
		return
	}
	defer s.running.Store(false)

	started := s.clock()
	s.log.Info("monitoring cycle started")

	var candidates []models.CandidateItem
	for _, adapter := range s.adapters {
		items, err := adapter.Fetch(ctx)
		if err != nil {
			s.log.Warn("adapter fetch failed",
				slog.String("platform", string(adapter.Platform())),
				slog.Int("partial", len(items)),
				slog.Any("err", err),
			)
		} else {
			s.log.Info("adapter fetch complete",
				slog.String("platform", string(adapter.Platform())),
				slog.Int("collected", len(items)),
			)
		}
		candidates = append(candidates, items...)
	}

	processed := 0
	for _, candidate := range candidates {
		if err := s.processItem(ctx, candidate); err != nil {
			s.log.Warn("item processing failed",
				slog.String("source_url", candidate.SourceURL),
				slog.Any("err", err),
			)
			continue
		}
		processed++
	}

	s.log.Info("monitoring cycle completed",
		slog.Int("candidates", len(candidates)),
		slog.Int("processed", processed),
		slog.Duration("elapsed", s.clock().Sub(started)),
	)
}

// processItem takes one candidate through dedup, classification,
// translation, persistence and alert evaluation. A duplicate is a silent
// skip, not an error.
func (s *Service) processItem(ctx context.Context, candidate models.CandidateItem) error {
	if candidate.SourceURL == "" {
		return fmt.Errorf("candidate without source url")
	}

	if s.cache.Seen(candidate.SourceURL) {
		s.log.Debug("duplicate skipped (cache)", slog.String("source_url", candidate.SourceURL))
		return nil
	}
	existing, err := s.store.FindNewsItemBySourceURL(ctx, candidate.SourceURL)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		s.cache.Mark(candidate.SourceURL)
		s.log.Debug("duplicate skipped (stored)", slog.String("source_url", candidate.SourceURL))
		return nil
	}

	analysis := s.analyst.Categorize(ctx, candidate.Title, candidate.Content)
	if analysis.Fallback {
		s.log.Debug("classification used fallback", slog.String("source_url", candidate.SourceURL))
	}

	content := candidate.Content
	if textutil.IsSpanish(content) {
		content = s.analyst.Translate(ctx, content)
	}

	item := models.NewsItem{
		ID:          textutil.BuildItemID(candidate.SourceURL),
		Title:       candidate.Title,
		Content:     content,
		Summary:     analysis.Summary,
		Category:    analysis.Category,
		Platform:    candidate.Platform,
		SourceURL:   candidate.SourceURL,
		SourceName:  candidate.SourceName,
		PublishedAt: candidate.PublishedAt,
		ImageURL:    candidate.ImageURL,
		Sentiment:   analysis.Sentiment,
		Keywords:    analysis.Keywords,
		Entities:    analysis.Entities,
		IsBreaking:  analysis.IsBreaking,
		Severity:    analysis.Severity,
		CreatedAt:   s.clock(),
	}

	if err := s.store.SaveNewsItem(ctx, item); err != nil {
		return fmt.Errorf("save news item: %w", err)
	}
	s.cache.Mark(candidate.SourceURL)

	if shouldAlert(analysis) {
		// Alert failure never rolls back the item write.
		if err := s.raiseAlert(ctx, item); err != nil {
			s.log.Error("alert creation failed",
				slog.String("news_item_id", item.ID),
				slog.Any("err", err),
			)
		}
	}

	s.log.Info("item processed",
		slog.String("platform", string(item.Platform)),
		slog.String("category", string(item.Category)),
		slog.String("title", truncateTitle(item.Title)),
	)
	return nil
}

// shouldAlert applies the alert gate: breaking flag or high/critical
// severity.
func shouldAlert(analysis ai.ClassificationResult) bool {
	return analysis.IsBreaking ||
		analysis.Severity == models.SeverityHigh ||
		analysis.Severity == models.SeverityCritical
}

func (s *Service) raiseAlert(ctx context.Context, item models.NewsItem) error {
	alert := models.Alert{
		ID:         uuid.NewString(),
		NewsItemID: item.ID,
		Title:      item.Title,
		Message:    item.Summary,
		Severity:   item.Severity,
		Category:   item.Category,
		Timestamp:  s.clock(),
		Read:       false,
		Metadata: map[string]any{
			"platform":  string(item.Platform),
			"sourceUrl": item.SourceURL,
		},
	}

	if err := s.store.SaveAlert(ctx, alert); err != nil {
		return fmt.Errorf("save alert: %w", err)
	}

	if err := s.sink.Publish(ctx, events.BreakingNews{Alert: alert, NewsItem: item}); err != nil {
		// Fire-and-forget: a failed publish loses the notification but
		// the alert record already exists.
		s.log.Warn("breaking-news publish failed", slog.Any("err", err))
	}

	s.log.Info("alert raised",
		slog.String("severity", string(alert.Severity)),
		slog.String("title", truncateTitle(alert.Title)),
	)
	return nil
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 50 {
		return title
	}
	return string(runes[:50]) + "..."
}
