package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
)

// InventoryRepository is the inventory ledger. Every mutating method is a single
// atomic statement against the row of one item, so concurrent callers never
// observe or produce negative counts.
//
// Errors:
//   - errs.ObjectNotFoundError when the item has no ledger row
//   - inventory.InsufficientStockError when Reserve asks for more than is available
//   - inventory.ErrReservationMismatch when Release or Consume exceed the reserved count
//
// A failed call leaves the row unchanged.
type InventoryRepository interface {
	Add(ctx context.Context, inv *inventory.Inventory) error
	Get(ctx context.Context, itemID kernel.UUID) (*inventory.Inventory, error)

	// CheckAvailability reports whether the row exists and holds at least qty available units.
	CheckAvailability(ctx context.Context, itemID kernel.UUID, qty int) (bool, error)

	// Reserve moves qty units from available to reserved.
	Reserve(ctx context.Context, itemID kernel.UUID, qty int) error

	// Release moves qty units from reserved back to available.
	Release(ctx context.Context, itemID kernel.UUID, qty int) error

	// Consume removes qty reserved units that left the warehouse.
	Consume(ctx context.Context, itemID kernel.UUID, qty int) error

	// Restock adds qty available units and stamps the restock time.
	Restock(ctx context.Context, itemID kernel.UUID, qty int, at time.Time) error
}
