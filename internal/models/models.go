package models

import "time"

// NewsCategory classifies an item into one of the fixed report sections.
type NewsCategory string

const (
	CategoryKeyEvents NewsCategory = "key_events"
	CategoryPolitical NewsCategory = "political"
	CategoryEconomic  NewsCategory = "economic"
	CategorySocial    NewsCategory = "social"
	CategoryAnalysis  NewsCategory = "analysis"
)

// Categories lists every valid category.
var Categories = []NewsCategory{
	CategoryKeyEvents,
	CategoryPolitical,
	CategoryEconomic,
	CategorySocial,
	CategoryAnalysis,
}

// Valid reports whether c is one of the known categories.
func (c NewsCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AlertSeverity is an ordered impact level.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Severities lists every valid severity.
var Severities = []AlertSeverity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is one of the known severities.
func (s AlertSeverity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// Sentiment is the overall tone of an item.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// Platform tags where a candidate item was collected.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformFacebook Platform = "facebook"
	PlatformTelegram Platform = "telegram"
	PlatformTikTok   Platform = "tiktok"
	PlatformNews     Platform = "news"
)

// Platforms lists every valid platform.
var Platforms = []Platform{PlatformTwitter, PlatformFacebook, PlatformTelegram, PlatformTikTok, PlatformNews}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// CandidateItem is a raw unit of content produced by a fetch adapter.
// It has no identity beyond its source URL and is never stored as-is.
type CandidateItem struct {
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	SourceURL   string         `json:"sourceUrl"`
	SourceName  string         `json:"sourceName"`
	PublishedAt time.Time      `json:"publishedAt"`
	Platform    Platform       `json:"platform"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Metrics     map[string]int `json:"metrics,omitempty"`
}

// NewsItem is the canonical stored record, one per unique source URL.
// Records are immutable once written.
type NewsItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Summary     string        `json:"summary"`
	Category    NewsCategory  `json:"category"`
	Platform    Platform      `json:"platform"`
	SourceURL   string        `json:"sourceUrl"`
	SourceName  string        `json:"sourceName"`
	PublishedAt time.Time     `json:"publishedAt"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Sentiment   Sentiment     `json:"sentiment"`
	Keywords    []string      `json:"keywords"`
	Entities    []string      `json:"entities"`
	IsBreaking  bool          `json:"isBreaking"`
	Severity    AlertSeverity `json:"severity"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Alert references a single NewsItem that crossed the alerting threshold.
type Alert struct {
	ID         string         `json:"id"`
	NewsItemID string         `json:"newsItemId"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Severity   AlertSeverity  `json:"severity"`
	Category   NewsCategory   `json:"category"`
	Timestamp  time.Time      `json:"timestamp"`
	Read       bool           `json:"read"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ReportStatistics aggregates counts over a full day of items.
type ReportStatistics struct {
	TotalItems int            `json:"totalItems"`
	ByPlatform map[string]int `json:"byPlatform"`
	ByCategory map[string]int `json:"byCategory"`
	BySeverity map[string]int `json:"bySeverity"`
}

// DailyReport is the digest generated once per calendar date.
// Bucket fields hold NewsItem IDs, at most ten each, most recent first.
type DailyReport struct {
	ID                string           `json:"id"`
	Date              time.Time        `json:"date"`
	Summary           string           `json:"summary"`
	KeyEvents         []string         `json:"keyEvents"`
	PoliticalUpdates  []string         `json:"politicalUpdates"`
	EconomicSituation []string         `json:"economicSituation"`
	SocialIssues      []string         `json:"socialIssues"`
	Trends            []string         `json:"trends"`
	Implications      []string         `json:"implications"`
	Recommendations   []string         `json:"recommendations"`
	Statistics        ReportStatistics `json:"statistics"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}
