package kafka

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

const (
	envelopeVersion = 1
	producerName    = "orderflow"
)

// Envelope is the JSON value of every message on the order events topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

type StatusChangedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	From        string `json:"from"`
	To          string `json:"to"`
	Reason      string `json:"reason,omitempty"`
}

type aggregatePayload struct {
	AggregateID string `json:"aggregate_id"`
}

func newEnvelope(eventID kernel.UUID, e kernel.DomainEvent) (Envelope, error) {
	var payload any
	switch ev := e.(type) {
	case order.StatusChanged:
		payload = StatusChangedPayload{
			OrderID:     ev.OrderID.String(),
			OrderNumber: ev.OrderNumber,
			From:        ev.From.String(),
			To:          ev.To.String(),
			Reason:      ev.Reason,
		}
	default:
		payload = aggregatePayload{AggregateID: e.AggregateID().String()}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       eventID.String(),
		EventType:     e.EventName(),
		EventVersion:  envelopeVersion,
		OccurredAt:    e.OccurredAt().UTC(),
		Producer:      producerName,
		CorrelationID: e.AggregateID().String(),
		Payload:       raw,
	}, nil
}
