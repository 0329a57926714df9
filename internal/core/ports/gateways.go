package ports

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// ErrPaymentDeclined is a permanent refusal by the payment provider.
var ErrPaymentDeclined = errors.New("payment declined")

type PaymentRequest struct {
	OrderID     kernel.UUID
	OrderNumber string
	Amount      kernel.Money
	Method      string
}

// PaymentGateway charges orders. Charging the same order twice returns the
// reference of the first successful charge.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (reference string, err error)
}

type PickLine struct {
	ItemID   kernel.UUID
	Name     string
	Quantity int
}

type PickRequest struct {
	OrderID      kernel.UUID
	OrderNumber  string
	Lines        []PickLine
	Refrigerated bool
}

// Warehouse picks and packs the reserved lines of an order.
type Warehouse interface {
	PickAndPack(ctx context.Context, req PickRequest) error
}

// EventPublisher delivers domain events after the transaction that produced them committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}

// CallbackDeduplicator suppresses concurrent or repeated deliveries of the same
// engine callback. Claim returns false when key was already claimed within ttl.
type CallbackDeduplicator interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so that a failed callback can run again.
	Release(ctx context.Context, key string) error
}
