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
	"github.com/venewatch/venezuela-monitor/internal/dedupe"
	"github.com/venewatch/venezuela-monitor/internal/elasticsearch"
	"github.com/venewatch/venezuela-monitor/internal/events"
	"github.com/venewatch/venezuela-monitor/internal/fetch"
	"github.com/venewatch/venezuela-monitor/internal/logger"
	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/monitor"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("monitor")
	cfg, err := config.LoadMonitor()
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
	analyst := ai.NewAnalyst(aiClient, cfg.GeminiClassifyModel, cfg.GeminiReportModel, log)

	adapters := []fetch.Adapter{
		fetch.NewRSSAdapter(cfg.TopicQueries, cfg.RSSFeeds, cfg.RSSTimeout, log),
	}
	if cfg.CandidatesTopic != "" {
		consumer := fetch.NewFeedConsumer(
			cfg.KafkaBrokers,
			cfg.CandidatesTopic,
			cfg.CandidatesGroup,
			models.Platform(cfg.CandidatesPlatform),
			cfg.FeedIdleWait,
			cfg.FeedMaxItems,
			log,
		)
		defer consumer.Close()
		adapters = append(adapters, consumer)
	}

	sink := events.NewKafkaSink(cfg.KafkaBrokers, cfg.EventsTopic, log)
	defer sink.Close()

	service := monitor.New(monitor.Deps{
		Adapters: adapters,
		Store:    esClient,
		Analyst:  analyst,
		Sink:     sink,
		Cache:    dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL),
		Log:      log,
	})

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("monitor running",
		slog.Duration("interval", cfg.Interval),
		slog.Int("adapters", len(adapters)),
	)

	// Run immediately on start.
	service.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			service.RunCycle(ctx)
		}
	}
}

// connectElasticsearch retries the initial connection with exponential
// backoff so the monitor survives a cold cluster start. Returns nil
// when all attempts fail or the context is canceled.
func connectElasticsearch(ctx context.Context, log *slog.Logger, cfg *config.Monitor) *elasticsearch.Client {
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
