package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureWriter) Close() error {
	c.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &captureWriter{}
	p := newProducer(w, "fern-recommendations", logging.NewNop())

	err := p.Publish(context.Background(), &Event{
		EventType:     "recommendation.playback_speed",
		Key:           "V_1",
		SchemaVersion: "1",
		Data:          json.RawMessage(`{"speed":1.5}`),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "fern-recommendations", msg.Topic)
	assert.Equal(t, "V_1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "recommendation.playback_speed", string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.False(t, decoded.Timestamp.IsZero())
	assert.JSONEq(t, `{"speed":1.5}`, string(decoded.Data))

	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&captureWriter{err: boom}, "t", logging.NewNop())
	assert.ErrorIs(t, p.Publish(context.Background(), &Event{EventType: "graph.seeded"}), boom)
	assert.NoError(t, p.Publish(context.Background()))
}

func TestCompressionCodec(t *testing.T) {
	assert.Equal(t, kafka.Snappy, compressionCodec(""))
	assert.Equal(t, kafka.Zstd, compressionCodec("zstd"))
	assert.Equal(t, kafka.Compression(0), compressionCodec("none"))
}
