package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

const StatusChangedEventName = "order.status_changed"

// StatusChanged is recorded on every status change of an order.
type StatusChanged struct {
	OrderID     kernel.UUID
	OrderNumber string
	From        Status
	To          Status
	Reason      string
	At          time.Time
}

func (e StatusChanged) EventName() string {
	return StatusChangedEventName
}

func (e StatusChanged) AggregateID() kernel.UUID {
	return e.OrderID
}

func (e StatusChanged) OccurredAt() time.Time {
	return e.At
}
