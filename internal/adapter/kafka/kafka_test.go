package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafkago.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSnapshot() *snapshot.Snapshot {
	loaded := time.Date(2024, 2, 3, 7, 30, 0, 0, time.UTC)
	return snapshot.Build(4, []domain.RegionSummary{
		{Code: "AT-07-01", RatingCounts: map[string]int{"3": 5}, AvalancheProblemCounts: map[string]int{"new_snow": 2}},
		{Code: "CH-1111", RatingCounts: map[string]int{"2": 1}, AvalancheProblemCounts: map[string]int{}},
	}, loaded)
}

func TestSerializeToMessage(t *testing.T) {
	loaded := time.Date(2024, 2, 3, 7, 30, 0, 0, time.UTC)
	totals := domain.Totals{
		DangerLevels:      map[string]int{"3": 5},
		AvalancheProblems: map[string]int{"new_snow": 2},
	}

	msg, err := serializeToMessage(domain.SuperTirol, totals, 4, loaded)
	require.NoError(t, err)

	assert.Equal(t, []byte("AT-07"), msg.Key)
	assert.Contains(t, string(msg.Value), `"super_region":"AT-07"`)
	assert.Contains(t, string(msg.Value), `"generation":4`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "generation", msg.Headers[0].Key)
	assert.Equal(t, []byte("4"), msg.Headers[0].Value)
	assert.Equal(t, "loaded_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-02-03T07:30:00Z"), msg.Headers[1].Value)
}

func TestWriter_PublishOneMessagePerSuperRegion(t *testing.T) {
	fw := &fakeWriter{}
	m := observability.NewMetricsForTesting()
	w := &Writer{writer: fw, logger: discardLogger(), metrics: m}

	require.NoError(t, w.Publish(context.Background(), testSnapshot()))

	require.Len(t, fw.msgs, len(domain.AllSuperRegions))
	assert.InDelta(t, float64(len(domain.AllSuperRegions)), testutil.ToFloat64(m.MessagesProduced), 0)

	byKey := make(map[string][]byte)
	for _, msg := range fw.msgs {
		byKey[string(msg.Key)] = msg.Value
	}
	var tirol map[string]any
	require.NoError(t, json.Unmarshal(byKey["AT-07"], &tirol))
	assert.Equal(t, "AT-07", tirol["super_region"])
	assert.Contains(t, byKey, "CH")
	assert.Contains(t, byKey, "IT-other")
}

func TestWriter_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	m := observability.NewMetricsForTesting()
	w := &Writer{writer: fw, logger: discardLogger(), metrics: m}

	err := w.Publish(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Zero(t, testutil.ToFloat64(m.MessagesProduced))
}

func TestReader_Wait(t *testing.T) {
	r := &Reader{
		reader: &fakeReader{msgs: []kafkago.Message{{Topic: "region-summary-updates", Key: []byte("x")}}},
		logger: discardLogger(),
	}
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
