package fetch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/venewatch/venezuela-monitor/internal/models"
)

// queueReader serves queued messages, then blocks until the fetch context
// expires, imitating an idle topic.
type queueReader struct {
	msgs      []kafka.Message
	committed int
}

func (q *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(q.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, nil
}

func (q *queueReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	q.committed += len(msgs)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidateMessage(t *testing.T, item models.CandidateItem) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(item)
	require.NoError(t, err)
	return kafka.Message{Value: payload}
}

func TestFeedConsumerDrainsUntilIdle(t *testing.T) {
	reader := &queueReader{msgs: []kafka.Message{
		candidateMessage(t, models.CandidateItem{
			Title:       "Fuel lines grow in Maracaibo",
			Content:     "Queues at stations stretched for blocks.",
			SourceURL:   "https://t.me/channel/100",
			SourceName:  "monitor-channel",
			Platform:    models.PlatformTelegram,
			PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}),
		candidateMessage(t, models.CandidateItem{
			Content:   "Apagón en Caracas esta noche. Reportes de varias zonas sin luz.",
			SourceURL: "https://t.me/channel/101",
		}),
	}}
	consumer := newFeedConsumer(reader, models.PlatformTelegram, 20*time.Millisecond, 100, testLogger())

	items, err := consumer.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, reader.committed)

	require.Equal(t, "Fuel lines grow in Maracaibo", items[0].Title)

	// Untitled post gets a generated title and consumer defaults.
	require.Equal(t, "Apagón en Caracas esta noche", items[1].Title)
	require.Equal(t, models.PlatformTelegram, items[1].Platform)
	require.Equal(t, "telegram", items[1].SourceName)
	require.False(t, items[1].PublishedAt.IsZero())
}

func TestFeedConsumerSkipsMalformed(t *testing.T) {
	reader := &queueReader{msgs: []kafka.Message{
		{Value: []byte("not json")},
		candidateMessage(t, models.CandidateItem{Title: "no url", Content: "body"}),
		candidateMessage(t, models.CandidateItem{
			Title:     "valid",
			Content:   "body",
			SourceURL: "https://example.com/v",
		}),
	}}
	consumer := newFeedConsumer(reader, models.PlatformTwitter, 20*time.Millisecond, 100, testLogger())

	items, err := consumer.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "valid", items[0].Title)
	// Malformed messages are still committed so they are not replayed.
	require.Equal(t, 3, reader.committed)
}

func TestFeedConsumerRespectsMaxItems(t *testing.T) {
	var msgs []kafka.Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, candidateMessage(t, models.CandidateItem{
			Title:     "post",
			Content:   "body",
			SourceURL: "https://example.com/" + string(rune('a'+i)),
		}))
	}
	reader := &queueReader{msgs: msgs}
	consumer := newFeedConsumer(reader, models.PlatformTwitter, 20*time.Millisecond, 3, testLogger())

	items, err := consumer.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
}
