// Package ports defines the contracts between the order core and its infrastructure:
// repositories, the unit of work, the process engine and the outbound gateways.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// An order is always loaded and saved together with its line items,
// approvals and shipment.
type OrderRepository interface {
	// Add persists a new order. A duplicate order number yields errs.AlreadyExistsError.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order and all of its children.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber retrieves an order by its human readable number.
	GetByNumber(ctx context.Context, number string) (*order.Order, error)
}
