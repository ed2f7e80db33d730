package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/venewatch/venezuela-monitor/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ELASTICSEARCH_ADDR", "ES_NEWS_INDEX", "ES_ALERTS_INDEX", "ES_REPORTS_INDEX",
		"MONITOR_INTERVAL", "MONITOR_TOPIC_QUERIES", "MONITOR_RSS_FEEDS",
		"KAFKA_BROKERS", "KAFKA_EVENTS_TOPIC", "KAFKA_CANDIDATES_TOPIC",
		"GEMINI_CLASSIFY_MODEL", "GEMINI_REPORT_MODEL",
		"API_BIND_ADDR", "API_PAGE_SIZE", "API_MAX_PAGE_SIZE",
		"REPORTER_INTERVAL", "DEDUPE_CAPACITY", "DEDUPE_TTL", "GEMINI_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMonitorDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := config.LoadMonitor()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "news_items", cfg.NewsIndex)
	require.Equal(t, "alerts", cfg.AlertsIndex)
	require.Equal(t, "daily_reports", cfg.ReportsIndex)
	require.Equal(t, 5*time.Minute, cfg.Interval)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "breaking_news", cfg.EventsTopic)
	require.Equal(t, "candidates_raw", cfg.CandidatesTopic)
	require.Equal(t, "gemini-2.0-flash", cfg.GeminiClassifyModel)
	require.NotEmpty(t, cfg.TopicQueries)
	require.Equal(t, 20000, cfg.DedupeCapacity)
	require.Equal(t, 24*time.Hour, cfg.DedupeTTL)
}

func TestLoadMonitorOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("MONITOR_INTERVAL", "90s")
	t.Setenv("MONITOR_TOPIC_QUERIES", "Venezuela oil, Venezuela elections")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("GEMINI_CLASSIFY_MODEL", "gemini-2.5-pro")
	t.Setenv("DEDUPE_TTL", "48h")

	cfg, err := config.LoadMonitor()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, 90*time.Second, cfg.Interval)
	require.Equal(t, []string{"Venezuela oil", "Venezuela elections"}, cfg.TopicQueries)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "gemini-2.5-pro", cfg.GeminiClassifyModel)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
}

func TestLoadMonitorRequiresAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "")

	_, err := config.LoadMonitor()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadAPI(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "25")
	t.Setenv("API_MAX_PAGE_SIZE", "100")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 25, cfg.DefaultPage)
	require.Equal(t, 100, cfg.MaxPage)
}

func TestLoadAPIRejectsInvertedPageSizes(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("API_PAGE_SIZE", "300")
	t.Setenv("API_MAX_PAGE_SIZE", "100")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadReporter(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("REPORTER_INTERVAL", "30m")

	cfg, err := config.LoadReporter()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.Interval)
	require.Equal(t, 120*time.Second, cfg.GeminiTimeout)
}
