// Package eventlog publishes domain events to the structured log. It is the
// publisher used when no Kafka brokers are configured.
package eventlog

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger.With("component", "event-log")}
}

func (p *Publisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	for _, e := range events {
		attrs := []slog.Attr{
			slog.String("event", e.EventName()),
			slog.String("aggregate_id", e.AggregateID().String()),
			slog.Time("occurred_at", e.OccurredAt()),
		}
		if sc, ok := e.(order.StatusChanged); ok {
			attrs = append(attrs,
				slog.String("order_number", sc.OrderNumber),
				slog.String("from", sc.From.String()),
				slog.String("to", sc.To.String()))
			if sc.Reason != "" {
				attrs = append(attrs, slog.String("reason", sc.Reason))
			}
		}
		p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event", attrs...)
	}
	return nil
}
