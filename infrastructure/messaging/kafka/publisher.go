// Package kafka publishes outbox events to a Kafka topic, keyed by aggregate
// ID so events of one order stay in one partition and keep their order.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"jewelry/infrastructure/messaging"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer MessageWriter
}

// ParseBrokers accepts a list whose entries may themselves be comma
// separated, as environment variables tend to be.
func ParseBrokers(raw []string) []string {
	var brokers []string
	for _, entry := range raw {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return brokers
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	brokers = ParseBrokers(brokers)
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	return NewPublisherWithWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}), nil
}

func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, msg messaging.Message) error {
	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(msg.AggregateID),
		Value: msg.Payload,
		Time:  time.Now().UTC(),
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(msg.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", msg.EventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ messaging.Publisher = (*Publisher)(nil)
