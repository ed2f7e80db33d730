package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/venewatch/venezuela-monitor/internal/models"
)

// BreakingNews is the payload emitted when an item crosses the alert
// threshold. Delivery is fire-and-forget; subscribers (dashboard push,
// webhook relays) consume the topic independently.
type BreakingNews struct {
	Alert    models.Alert    `json:"alert"`
	NewsItem models.NewsItem `json:"newsItem"`
}

// Sink receives breaking-news notifications from the monitoring cycle.
type Sink interface {
	Publish(ctx context.Context, event BreakingNews) error
}

// KafkaSink publishes breaking-news events to a Kafka topic.
type KafkaSink struct {
	writer *kafka.Writer
	log    *slog.Logger
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink builds a sink writing to the given brokers and topic.
func NewKafkaSink(brokers []string, topic string, log *slog.Logger) *KafkaSink {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &KafkaSink{writer: writer, log: log}
}

// Publish writes one event. No retry beyond the writer's own attempts
// and no acknowledgment tracking.
func (s *KafkaSink) Publish(ctx context.Context, event BreakingNews) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.NewsItem.ID),
		Value: payload,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.log.Debug("breaking-news event published", slog.String("news_item_id", event.NewsItem.ID))
	return nil
}

// Close releases the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// NopSink drops every event. Used when no event transport is configured.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(context.Context, BreakingNews) error { return nil }
