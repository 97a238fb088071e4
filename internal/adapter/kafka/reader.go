package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/avalanche-stats/internal/config"
	kafkago "github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafkago.Reader used here.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Reader consumes dataset-update notifications. Message content is ignored:
// any message means "the dataset changed, refresh now".
// It implements pipeline.Trigger.
type Reader struct {
	reader messageReader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured trigger topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTriggerTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Reader{reader: r, logger: logger}
}

// Wait blocks until the next update notification arrives. ReadMessage commits
// the offset, so a notification is consumed once per consumer group.
func (r *Reader) Wait(ctx context.Context) error {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return fmt.Errorf("read trigger message: %w", err)
	}
	r.logger.Debug("dataset update notification",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)
	return nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
