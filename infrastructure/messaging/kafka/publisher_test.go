package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelry/infrastructure/messaging"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysByAggregate(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisherWithWriter(w)

	err := p.Publish(context.Background(), messaging.Message{
		ID:          "evt-1",
		AggregateID: "42",
		EventType:   "order.paid",
		Payload:     []byte(`{"order_id":42}`),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.JSONEq(t, `{"order_id":42}`, string(msg.Value))
	assert.Equal(t, []kafkago.Header{
		{Key: "event_id", Value: []byte("evt-1")},
		{Key: "event_type", Value: []byte("order.paid")},
	}, msg.Headers)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	broken := errors.New("broker unavailable")
	p := NewPublisherWithWriter(&recordingWriter{err: broken})

	err := p.Publish(context.Background(), messaging.Message{EventType: "order.placed"})
	assert.ErrorIs(t, err, broken)
	assert.ErrorContains(t, err, "order.placed")
}

func TestNewPublisherValidates(t *testing.T) {
	_, err := NewPublisher([]string{" , "}, "orders")
	assert.ErrorIs(t, err, ErrNoBrokers)

	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, ParseBrokers([]string{"a:9092, b:9092", "c:9092"}))
}
