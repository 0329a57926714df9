package kernel

import "time"

// DomainEvent is a fact recorded by an aggregate and published by the unit of
// work once the surrounding transaction has committed.
type DomainEvent interface {
	EventName() string
	AggregateID() UUID
	OccurredAt() time.Time
}
