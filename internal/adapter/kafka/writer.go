package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/config"
	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces super-region totals to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish writes one message per super-region for snap in a single
// WriteMessages call. Messages are keyed by super-region code so each code
// always lands on the same partition.
func (w *Writer) Publish(ctx context.Context, snap *snapshot.Snapshot) error {
	msgs := make([]kafkago.Message, 0, len(domain.AllSuperRegions))
	for _, sr := range domain.AllSuperRegions {
		msg, err := serializeToMessage(sr, snap.SuperRegions[sr], snap.Generation, snap.LoadedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write super-region totals: %w", err)
	}
	w.metrics.MessagesProduced.Add(float64(len(msgs)))
	w.logger.Debug("super-region totals published", "generation", snap.Generation, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// totalsMessage is the JSON value of a super-region totals message.
type totalsMessage struct {
	SuperRegion domain.SuperRegion `json:"super_region"`
	Generation  uint64             `json:"generation"`
	domain.Totals
}

// serializeToMessage marshals one super-region's totals into a Kafka message.
func serializeToMessage(sr domain.SuperRegion, t domain.Totals, generation uint64, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(totalsMessage{SuperRegion: sr, Generation: generation, Totals: t})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize super-region totals: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sr),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generation", Value: []byte(strconv.FormatUint(generation, 10))},
			{Key: "loaded_at", Value: []byte(loadedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
