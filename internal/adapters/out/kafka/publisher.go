// Package kafka publishes domain events to a Kafka topic. Messages are keyed
// by aggregate id so that the events of one order stay in one partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	kafkago "github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

var _ ports.EventPublisher = (*Publisher)(nil)

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer MessageWriter
	ids    kernel.IDGenerator
}

// NewWriter creates a synchronous writer for topic on brokers.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: writeTimeout,
	}
}

func NewPublisher(writer MessageWriter, ids kernel.IDGenerator) *Publisher {
	return &Publisher{writer: writer, ids: ids}
}

func (p *Publisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for _, e := range events {
		env, err := newEnvelope(p.ids.NewID(), e)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.EventName(), err)
		}
		value, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.EventName(), err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(env.CorrelationID),
			Value: value,
			Time:  env.OccurredAt,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(env.EventType)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
