package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/venewatch/venezuela-monitor/internal/models"
	"github.com/venewatch/venezuela-monitor/internal/textutil"
)

// messageReader is the slice of kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// FeedConsumer drains candidate items that external platform agents
// (Twitter, Telegram, Facebook, TikTok scrapers) publish onto a raw
// topic. Each cycle it reads until the topic goes idle or maxItems is
// reached; malformed payloads are committed and skipped.
type FeedConsumer struct {
	reader   messageReader
	platform models.Platform
	idleWait time.Duration
	maxItems int
	log      *slog.Logger
}

var _ Adapter = (*FeedConsumer)(nil)

// NewFeedConsumer builds a consumer on a dedicated consumer group.
func NewFeedConsumer(brokers []string, topic, group string, platform models.Platform, idleWait time.Duration, maxItems int, log *slog.Logger) *FeedConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	return newFeedConsumer(reader, platform, idleWait, maxItems, log)
}

func newFeedConsumer(reader messageReader, platform models.Platform, idleWait time.Duration, maxItems int, log *slog.Logger) *FeedConsumer {
	if idleWait <= 0 {
		idleWait = 2 * time.Second
	}
	if maxItems <= 0 {
		maxItems = 500
	}
	return &FeedConsumer{
		reader:   reader,
		platform: platform,
		idleWait: idleWait,
		maxItems: maxItems,
		log:      log,
	}
}

// Platform implements Adapter.
func (c *FeedConsumer) Platform() models.Platform { return c.platform }

// Close releases the underlying Kafka reader.
func (c *FeedConsumer) Close() error {
	if closer, ok := c.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Fetch implements Adapter. An idle topic is an empty result, not an error.
func (c *FeedConsumer) Fetch(ctx context.Context) ([]models.CandidateItem, error) {
	var items []models.CandidateItem

	for len(items) < c.maxItems {
		fetchCtx, cancel := context.WithTimeout(ctx, c.idleWait)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return items, nil
			}
			if errors.Is(err, context.Canceled) {
				return items, ctx.Err()
			}
			return items, fmt.Errorf("fetch message: %w", err)
		}

		item, ok := c.decode(msg.Value)
		if ok {
			items = append(items, item)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit candidate message", slog.Any("err", err))
		}
	}

	return items, nil
}

func (c *FeedConsumer) decode(payload []byte) (models.CandidateItem, bool) {
	var item models.CandidateItem
	if err := json.Unmarshal(payload, &item); err != nil {
		c.log.Warn("malformed candidate payload skipped", slog.Any("err", err))
		return models.CandidateItem{}, false
	}

	item.SourceURL = strings.TrimSpace(item.SourceURL)
	item.Title = strings.TrimSpace(item.Title)
	item.Content = strings.TrimSpace(item.Content)

	if item.SourceURL == "" {
		c.log.Warn("candidate without source url skipped")
		return models.CandidateItem{}, false
	}
	if item.Title == "" && item.Content == "" {
		c.log.Warn("empty candidate skipped", slog.String("source_url", item.SourceURL))
		return models.CandidateItem{}, false
	}

	// Social posts often arrive untitled.
	if item.Title == "" {
		item.Title = textutil.GenerateTitle(item.Content, 10)
	}
	if item.Content == "" {
		item.Content = item.Title
	}
	if item.Platform == "" {
		item.Platform = c.platform
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = time.Now().UTC()
	}
	if item.SourceName == "" {
		item.SourceName = string(item.Platform)
	}

	return item, true
}
