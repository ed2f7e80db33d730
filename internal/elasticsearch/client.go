package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/textutil"
)

// Client wraps go-elasticsearch with helpers for the three indices this
// project uses: news items, alerts and daily reports.
type Client struct {
	es           *elasticsearch.Client
	newsIndex    string
	alertsIndex  string
	reportsIndex string
	log          *slog.Logger
}

// Indices names the three indices a client operates on.
type Indices struct {
	News    string
	Alerts  string
	Reports string
}

// NewsSearchParams narrow a news item search.
type NewsSearchParams struct {
	Category string
	Platform string
	Breaking bool
	Start    *time.Time
	End      *time.Time
	From     int
	Size     int
}

// NewsSearchResult bundles hits and total count.
type NewsSearchResult struct {
	Total int64             `json:"total"`
	Items []models.NewsItem `json:"items"`
}

// New instantiates the Elasticsearch client.
func New(addr string, indices Indices, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		es:           es,
		newsIndex:    indices.News,
		alertsIndex:  indices.Alerts,
		reportsIndex: indices.Reports,
		log:          logger,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// Health pings the cluster to ensure connectivity.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// SaveNewsItem writes a news item. The document ID is derived from the
// source URL, so writing the same URL twice can only overwrite, never
// duplicate.
func (c *Client) SaveNewsItem(ctx context.Context, item models.NewsItem) error {
	return c.index(ctx, c.newsIndex, item.ID, item)
}

// FindNewsItemBySourceURL returns the stored item for a source URL, or
// nil when none exists.
func (c *Client) FindNewsItemBySourceURL(ctx context.Context, sourceURL string) (*models.NewsItem, error) {
	var item models.NewsItem
	found, err := c.get(ctx, c.newsIndex, textutil.BuildItemID(sourceURL), &item)
	if err != nil || !found {
		return nil, err
	}
	return &item, nil
}

// GetNewsItem fetches one item by document ID, nil when absent.
func (c *Client) GetNewsItem(ctx context.Context, id string) (*models.NewsItem, error) {
	var item models.NewsItem
	found, err := c.get(ctx, c.newsIndex, id, &item)
	if err != nil || !found {
		return nil, err
	}
	return &item, nil
}

// FindNewsItemsInRange returns every item published inside the closed
// interval [start, end], newest first.
func (c *Client) FindNewsItemsInRange(ctx context.Context, start, end time.Time) ([]models.NewsItem, error) {
	result, err := c.SearchNewsItems(ctx, NewsSearchParams{
		Start: &start,
		End:   &end,
		Size:  10_000,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// SearchNewsItems executes a filtered search sorted by publishedAt desc.
func (c *Client) SearchNewsItems(ctx context.Context, params NewsSearchParams) (*NewsSearchResult, error) {
	if params.Size <= 0 {
		params.Size = 50
	}
	if params.From < 0 {
		params.From = 0
	}

	filters := make([]map[string]any, 0, 4)
	if params.Category != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"category": params.Category},
		})
	}
	if params.Platform != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"platform": params.Platform},
		})
	}
	if params.Breaking {
		filters = append(filters, map[string]any{
			"term": map[string]any{"isBreaking": true},
		})
	}
	if params.Start != nil || params.End != nil {
		rangeQuery := map[string]any{}
		if params.Start != nil {
			rangeQuery["gte"] = params.Start.UTC().Format(time.RFC3339Nano)
		}
		if params.End != nil {
			rangeQuery["lte"] = params.End.UTC().Format(time.RFC3339Nano)
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"publishedAt": rangeQuery},
		})
	}

	boolQuery := map[string]any{}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	} else {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	body := map[string]any{
		"from":             params.From,
		"size":             params.Size,
		"track_total_hits": true,
		"query":            map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"publishedAt": map[string]any{"order": "desc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.newsIndex),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search news failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.NewsItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.NewsItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	return &NewsSearchResult{Total: parsed.Hits.Total.Value, Items: items}, nil
}

// SaveAlert writes an alert record.
func (c *Client) SaveAlert(ctx context.Context, alert models.Alert) error {
	return c.index(ctx, c.alertsIndex, alert.ID, alert)
}

// SearchAlerts returns recent alerts, optionally unread only, newest first.
func (c *Client) SearchAlerts(ctx context.Context, unreadOnly bool, size int) ([]models.Alert, error) {
	if size <= 0 {
		size = 50
	}

	boolQuery := map[string]any{}
	if unreadOnly {
		boolQuery["filter"] = []map[string]any{
			{"term": map[string]any{"read": false}},
		}
	} else {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	body := map[string]any{
		"size":  size,
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal alerts query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.alertsIndex),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search alerts: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search alerts failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Alert `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode alerts response: %w", err)
	}

	alerts := make([]models.Alert, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		alerts = append(alerts, hit.Source)
	}
	return alerts, nil
}

// MarkAlertRead flips the read flag on one alert and returns the updated
// record. Returns nil when the alert does not exist.
func (c *Client) MarkAlertRead(ctx context.Context, id string) (*models.Alert, error) {
	payload := []byte(`{"doc":{"read":true}}`)

	req := esapi.UpdateRequest{
		Index:      c.alertsIndex,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("update alert: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("update alert failed: %s", strings.TrimSpace(string(data)))
	}

	var alert models.Alert
	found, err := c.get(ctx, c.alertsIndex, id, &alert)
	if err != nil || !found {
		return nil, err
	}
	return &alert, nil
}

// SaveReport writes a daily report keyed by its calendar date, replacing
// any previous report for the same date.
func (c *Client) SaveReport(ctx context.Context, report models.DailyReport) error {
	return c.index(ctx, c.reportsIndex, report.ID, report)
}

// FindReportByDate returns the report for a calendar date, nil when none
// has been generated.
func (c *Client) FindReportByDate(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	var report models.DailyReport
	found, err := c.get(ctx, c.reportsIndex, ReportID(date), &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

// ReportID formats the document ID for a report date.
func ReportID(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}

func (c *Client) index(ctx context.Context, index, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) get(ctx context.Context, index, id string, out any) (bool, error) {
	req := esapi.GetRequest{
		Index:      index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return false, fmt.Errorf("get doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("get doc failed: %s", strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode get response: %w", err)
	}
	if err := json.Unmarshal(parsed.Source, out); err != nil {
		return false, fmt.Errorf("unmarshal doc: %w", err)
	}
	return true, nil
}
