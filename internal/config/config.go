package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr string
	NewsIndex         string
	AlertsIndex       string
	ReportsIndex      string
}

// Monitor holds configuration for the monitoring cycle service.
type Monitor struct {
	Common
	Interval time.Duration

	GeminiAPIKey        string
	GeminiClassifyModel string
	GeminiReportModel   string
	GeminiTimeout       time.Duration

	KafkaBrokers       []string
	EventsTopic        string
	CandidatesTopic    string
	CandidatesGroup    string
	CandidatesPlatform string
	FeedIdleWait       time.Duration
	FeedMaxItems       int

	TopicQueries []string
	RSSFeeds     []string
	RSSTimeout   time.Duration

	DedupeCapacity int
	DedupeTTL      time.Duration
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr    string
	DefaultPage int
	MaxPage     int

	GeminiAPIKey      string
	GeminiReportModel string
	GeminiTimeout     time.Duration
}

// Reporter configures the daily report loop.
type Reporter struct {
	Common
	Interval time.Duration

	GeminiAPIKey      string
	GeminiReportModel string
	GeminiTimeout     time.Duration
}

// defaultQueries seed the news adapter when MONITOR_TOPIC_QUERIES is
// unset.
var defaultQueries = []string{
	"Venezuela crisis",
	"Venezuela economy",
	"Venezuela politics",
	"Venezuela Maduro",
	"Venezuela sanctions",
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr: getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		NewsIndex:         getEnv("ES_NEWS_INDEX", "news_items"),
		AlertsIndex:       getEnv("ES_ALERTS_INDEX", "alerts"),
		ReportsIndex:      getEnv("ES_REPORTS_INDEX", "daily_reports"),
	}
}

// LoadMonitor builds a Monitor config from environment variables.
func LoadMonitor() (*Monitor, error) {
	c := &Monitor{
		Common:   loadCommon(),
		Interval: getDuration("MONITOR_INTERVAL", "5m"),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiClassifyModel: getEnv("GEMINI_CLASSIFY_MODEL", "gemini-2.0-flash"),
		GeminiReportModel:   getEnv("GEMINI_REPORT_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:       getDuration("GEMINI_TIMEOUT", "60s"),

		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		EventsTopic:        getEnv("KAFKA_EVENTS_TOPIC", "breaking_news"),
		CandidatesTopic:    getEnv("KAFKA_CANDIDATES_TOPIC", "candidates_raw"),
		CandidatesGroup:    getEnv("KAFKA_CONSUMER_GROUP", "venezuela-monitor"),
		CandidatesPlatform: getEnv("KAFKA_CANDIDATES_PLATFORM", "twitter"),
		FeedIdleWait:       getDuration("FEED_IDLE_WAIT", "2s"),
		FeedMaxItems:       getInt("FEED_MAX_ITEMS", 500),

		TopicQueries: splitAndTrimDefault(os.Getenv("MONITOR_TOPIC_QUERIES"), defaultQueries),
		RSSFeeds:     splitAndTrim(os.Getenv("MONITOR_RSS_FEEDS")),
		RSSTimeout:   getDuration("RSS_TIMEOUT", "15s"),

		DedupeCapacity: getInt("DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("DEDUPE_TTL", "24h"),
	}

	if c.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("MONITOR_INTERVAL must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("DEDUPE_CAPACITY must be positive")
	}
	if c.FeedMaxItems <= 0 {
		return nil, fmt.Errorf("FEED_MAX_ITEMS must be positive")
	}
	if len(c.TopicQueries) == 0 && len(c.RSSFeeds) == 0 {
		return nil, fmt.Errorf("at least one of MONITOR_TOPIC_QUERIES or MONITOR_RSS_FEEDS must be set")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:      loadCommon(),
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 50),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 200),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiReportModel: getEnv("GEMINI_REPORT_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:     getDuration("GEMINI_TIMEOUT", "60s"),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}

	return c, nil
}

// LoadReporter builds a Reporter config from environment variables.
func LoadReporter() (*Reporter, error) {
	c := &Reporter{
		Common:   loadCommon(),
		Interval: getDuration("REPORTER_INTERVAL", "1h"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiReportModel: getEnv("GEMINI_REPORT_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:     getDuration("GEMINI_TIMEOUT", "120s"),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("REPORTER_INTERVAL must be positive")
	}
	if c.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitAndTrimDefault(raw string, fallback []string) []string {
	out := splitAndTrim(raw)
	if len(out) == 0 {
		return fallback
	}
	return out
}
