package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/venewatch/venezuela-monitor/internal/ai"
	"github.com/venewatch/venezuela-monitor/internal/config"
	"github.com/venewatch/venezuela-monitor/internal/elasticsearch"
	"github.com/venewatch/venezuela-monitor/internal/logger"
	"github.com/venewatch/venezuela-monitor/internal/report"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("reporter")
	cfg, err := config.LoadReporter()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient := connectElasticsearch(ctx, log, cfg)
	if esClient == nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTimeout, log)
	if err != nil {
		log.Error("init gemini client", slog.Any("err", err))
		os.Exit(1)
	}
	analyst := ai.NewAnalyst(aiClient, cfg.GeminiReportModel, cfg.GeminiReportModel, log)

	generator := report.New(esClient, analyst, nil, log)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("reporter running", slog.Duration("interval", cfg.Interval))

	// Run immediately on start so a fresh deployment gets today's
	// report without waiting a full interval.
	runOnce(ctx, log, generator)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, generator)
		}
	}
}

// runOnce regenerates the report for the current day. Regeneration
// overwrites the stored document, so each tick folds in the items that
// arrived since the previous run.
func runOnce(ctx context.Context, log *slog.Logger, generator *report.Generator) {
	subCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	today := time.Now().UTC()
	rep, err := generator.GenerateDailyReport(subCtx, today)
	if err != nil {
		log.Warn("report run failed (will retry on next interval)", slog.Any("err", err))
		return
	}
	if rep == nil {
		log.Debug("no items for today, report skipped")
		return
	}

	log.Info("report generated",
		slog.String("id", rep.ID),
		slog.Int("total_items", rep.Statistics.TotalItems),
	)
}

func connectElasticsearch(ctx context.Context, log *slog.Logger, cfg *config.Reporter) *elasticsearch.Client {
	indices := elasticsearch.Indices{
		News:    cfg.NewsIndex,
		Alerts:  cfg.AlertsIndex,
		Reports: cfg.ReportsIndex,
	}

	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, indices, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				return esClient
			}
			err = pingErr
		}

		log.Warn("elasticsearch not ready, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", maxRetries),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	return nil
}
