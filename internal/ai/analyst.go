package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/textutil"
)

const persona = "You are an intelligence analyst specializing in Venezuela. " +
	"Provide accurate, objective analysis for security and business professionals. " +
	"Always respond with valid JSON only, no markdown fences, no commentary."

// ClassificationResult carries the classifier output for one item.
// Fallback is true when the model call or parse failed and the documented
// degrade values were substituted instead; callers can branch on it but
// never see an error.
type ClassificationResult struct {
	Category   models.NewsCategory
	Severity   models.AlertSeverity
	IsBreaking bool
	Summary    string
	Sentiment  models.Sentiment
	Keywords   []string
	Entities   []string
	Fallback   bool
}

// DailyAnalysis is the narrative block of a daily report.
type DailyAnalysis struct {
	Summary         string   `json:"summary"`
	Trends          []string `json:"trends"`
	Implications    []string `json:"implications"`
	Recommendations []string `json:"recommendations"`
}

// AnalysisItem is the projection of a NewsItem sent into the daily
// analysis prompt. Full content is deliberately excluded for size.
type AnalysisItem struct {
	Title    string
	Summary  string
	Category models.NewsCategory
	Severity models.AlertSeverity
}

// Analyst wraps a text generator with the three analysis operations the
// pipeline needs. Every operation degrades to a documented fallback on
// any failure: the monitoring loop must never stall on the model.
type Analyst struct {
	gen           TextGenerator
	classifyModel string
	reportModel   string
	log           *slog.Logger
}

// NewAnalyst builds an analyst on top of a text generator.
func NewAnalyst(gen TextGenerator, classifyModel, reportModel string, log *slog.Logger) *Analyst {
	return &Analyst{
		gen:           gen,
		classifyModel: classifyModel,
		reportModel:   reportModel,
		log:           log,
	}
}

type classifyResponse struct {
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	IsBreaking bool     `json:"isBreaking"`
	Summary    string   `json:"summary"`
	Sentiment  string   `json:"sentiment"`
	Keywords   []string `json:"keywords"`
	Entities   []string `json:"entities"`
}

// Categorize classifies one item. It never returns an error: on any
// failure the result carries the fallback values and Fallback=true.
func (a *Analyst) Categorize(ctx context.Context, title, content string) ClassificationResult {
	prompt := a.buildClassifyPrompt(title, textutil.CleanText(content))

	raw, err := a.gen.GenerateText(ctx, a.classifyModel, prompt)
	if err != nil {
		a.log.Warn("classification degraded to fallback", slog.Any("err", err))
		return fallbackClassification(content)
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		cleaned := extractJSON(raw)
		if cleaned == "" {
			a.log.Warn("classification response not parseable", slog.String("raw", truncateForLog(raw)))
			return fallbackClassification(content)
		}
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			a.log.Warn("classification response not parseable", slog.Any("err", err))
			return fallbackClassification(content)
		}
	}

	result := ClassificationResult{
		Category:   models.NewsCategory(strings.TrimSpace(parsed.Category)),
		Severity:   models.AlertSeverity(strings.TrimSpace(parsed.Severity)),
		IsBreaking: parsed.IsBreaking,
		Summary:    strings.TrimSpace(parsed.Summary),
		Sentiment:  models.Sentiment(strings.TrimSpace(parsed.Sentiment)),
		Keywords:   parsed.Keywords,
		Entities:   parsed.Entities,
	}

	// Snap out-of-enum values to safe defaults instead of rejecting the
	// whole response.
	if !result.Category.Valid() {
		result.Category = models.CategoryKeyEvents
	}
	if !result.Severity.Valid() {
		result.Severity = models.SeverityLow
	}
	if !result.Sentiment.Valid() {
		result.Sentiment = models.SentimentNeutral
	}
	if result.Summary == "" {
		result.Summary = textutil.FallbackSummary(content)
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	if result.Entities == nil {
		result.Entities = []string{}
	}

	return result
}

// Translate renders Spanish text into English. On any failure the input
// is returned unchanged.
func (a *Analyst) Translate(ctx context.Context, text string) string {
	prompt := "Translate the following Spanish text to English. " +
		"Preserve meaning and context. Only return the translation, nothing else.\n\n" + text

	translated, err := a.gen.GenerateText(ctx, a.classifyModel, prompt)
	if err != nil {
		a.log.Warn("translation degraded, keeping original text", slog.Any("err", err))
		return text
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return text
	}
	return translated
}

// DailyAnalysisFallback is the degrade value for DailyAnalysis.
var DailyAnalysisFallback = DailyAnalysis{
	Summary:         "Analysis temporarily unavailable.",
	Trends:          []string{},
	Implications:    []string{},
	Recommendations: []string{},
}

// GenerateDailyAnalysis produces the narrative summary for a day's items.
// Items should arrive sorted by recency, newest first. Degrades to
// DailyAnalysisFallback on any failure.
func (a *Analyst) GenerateDailyAnalysis(ctx context.Context, items []AnalysisItem) DailyAnalysis {
	prompt := a.buildDailyPrompt(items)

	raw, err := a.gen.GenerateText(ctx, a.reportModel, prompt)
	if err != nil {
		a.log.Warn("daily analysis degraded to fallback", slog.Any("err", err))
		return DailyAnalysisFallback
	}

	var parsed DailyAnalysis
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		cleaned := extractJSON(raw)
		if cleaned == "" {
			a.log.Warn("daily analysis response not parseable", slog.String("raw", truncateForLog(raw)))
			return DailyAnalysisFallback
		}
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			a.log.Warn("daily analysis response not parseable", slog.Any("err", err))
			return DailyAnalysisFallback
		}
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		return DailyAnalysisFallback
	}
	if parsed.Trends == nil {
		parsed.Trends = []string{}
	}
	if parsed.Implications == nil {
		parsed.Implications = []string{}
	}
	if parsed.Recommendations == nil {
		parsed.Recommendations = []string{}
	}
	return parsed
}

func (a *Analyst) buildClassifyPrompt(title, content string) string {
	return fmt.Sprintf(`%s

Analyze this Venezuela-related news content and provide structured categorization:

Title: %s
Content: %s

Provide a JSON object with:
1. category: one of ["key_events", "political", "economic", "social", "analysis"]
2. severity: one of ["low", "medium", "high", "critical"]
3. isBreaking: boolean (true if urgent/breaking news)
4. summary: 2-3 sentence summary
5. sentiment: one of ["positive", "negative", "neutral"]
6. keywords: array of 5-10 relevant keywords
7. entities: array of people, organizations, locations mentioned

Consider:
- key_events: major developments, breaking news, significant incidents
- political: government actions, policy changes, international relations
- economic: economic indicators, trade, sanctions, oil production
- social: humanitarian issues, migration, protests, public sentiment
- severity reflects impact on security and business operations`, persona, title, content)
}

func (a *Analyst) buildDailyPrompt(items []AnalysisItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s/%s] %s - %s\n", i+1, item.Category, item.Severity, item.Title, item.Summary)
	}

	return fmt.Sprintf(`%s

Analyze today's Venezuela intelligence and provide an executive summary for security and business professionals:

NEWS ITEMS (%d total):
%s
Provide a JSON object with:
1. summary: executive summary (3-4 paragraphs) of the day's developments
2. trends: array of 5-7 key trends observed
3. implications: array of 5-7 implications for security and business operations
4. recommendations: array of 3-5 actionable recommendations

Focus on security risks, operational impacts, political stability indicators, economic factors, and migration trends.`,
		persona, len(items), b.String())
}

func fallbackClassification(content string) ClassificationResult {
	return ClassificationResult{
		Category:   models.CategoryKeyEvents,
		Severity:   models.SeverityLow,
		IsBreaking: false,
		Summary:    textutil.FallbackSummary(content),
		Sentiment:  models.SentimentNeutral,
		Keywords:   []string{},
		Entities:   []string{},
		Fallback:   true,
	}
}

func truncateForLog(raw string) string {
	if len(raw) > 300 {
		return raw[:300]
	}
	return raw
}
