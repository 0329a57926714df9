package inventory

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

const (
	DefaultReorderLevel    = 10
	DefaultReorderQuantity = 50
)

var (
	ErrInventoryIsNotConstructed = errors.New("Inventory must be created via NewInventory or RestoreInventory")

	// ErrInsufficientStock is the sentinel behind InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrReservationMismatch signals a release or consume of more units than are
	// reserved. It always indicates a bookkeeping bug upstream.
	ErrReservationMismatch = errors.New("reservation mismatch")
)

// InsufficientStockError reports a reservation that asked for more units than are available.
type InsufficientStockError struct {
	ItemID    kernel.UUID
	Requested int
	Available int
}

func NewInsufficientStockError(itemID kernel.UUID, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{ItemID: itemID, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: item %s requested %d, available %d", ErrInsufficientStock, e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Inventory is the stock ledger row of one catalog item.
//
// Invariants:
//   - available and reserved are never negative
//   - Reserve and Release conserve available+reserved
//   - Consume lowers reserved only (the units leave the warehouse)
//   - Restock raises available only
type Inventory struct {
	itemID            kernel.UUID
	available         int
	reserved          int
	reorderLevel      int
	reorderQuantity   int
	warehouseLocation string
	lastRestockedAt   *time.Time

	isConstructed bool
}

// NewInventory opens a ledger row for an item with the default reorder policy.
func NewInventory(itemID kernel.UUID, available int, warehouseLocation string) (*Inventory, error) {
	return RestoreInventory(itemID, available, 0, DefaultReorderLevel, DefaultReorderQuantity, warehouseLocation, nil)
}

func RestoreInventory(
	itemID kernel.UUID,
	available, reserved, reorderLevel, reorderQuantity int,
	warehouseLocation string,
	lastRestockedAt *time.Time,
) (*Inventory, error) {
	inv := &Inventory{
		warehouseLocation: warehouseLocation,
		lastRestockedAt:   lastRestockedAt,
		isConstructed:     true,
	}

	if err := errors.Join(
		inv.setItemID(itemID),
		nonNegative("quantity available", available),
		nonNegative("quantity reserved", reserved),
		nonNegative("reorder level", reorderLevel),
		nonNegative("reorder quantity", reorderQuantity),
	); err != nil {
		return nil, err
	}

	inv.available = available
	inv.reserved = reserved
	inv.reorderLevel = reorderLevel
	inv.reorderQuantity = reorderQuantity
	return inv, nil
}

// ValidateQuantity rejects non-positive quantities for every ledger operation.
func ValidateQuantity(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", qty))
	}
	return nil
}

func (i *Inventory) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrInventoryIsNotConstructed
	}
	return nil
}

func (i *Inventory) ItemID() kernel.UUID         { return i.itemID }
func (i *Inventory) Available() int              { return i.available }
func (i *Inventory) Reserved() int               { return i.reserved }
func (i *Inventory) ReorderLevel() int           { return i.reorderLevel }
func (i *Inventory) ReorderQuantity() int        { return i.reorderQuantity }
func (i *Inventory) WarehouseLocation() string   { return i.warehouseLocation }
func (i *Inventory) LastRestockedAt() *time.Time { return i.lastRestockedAt }

// CanSatisfy reports whether qty units are available right now.
func (i *Inventory) CanSatisfy(qty int) bool {
	return qty > 0 && i.available >= qty
}

// IsLowStock is true once available drops to the reorder level or below.
func (i *Inventory) IsLowStock() bool {
	return i.available <= i.reorderLevel
}

// Reserve moves qty units from available to reserved.
// On failure nothing is changed.
func (i *Inventory) Reserve(qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if i.available < qty {
		return NewInsufficientStockError(i.itemID, qty, i.available)
	}
	i.available -= qty
	i.reserved += qty
	return nil
}

// Release moves qty units from reserved back to available.
func (i *Inventory) Release(qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if i.reserved < qty {
		return fmt.Errorf("%w: release %d of %d reserved for item %s", ErrReservationMismatch, qty, i.reserved, i.itemID)
	}
	i.reserved -= qty
	i.available += qty
	return nil
}

// Consume removes qty reserved units from the ledger when they are picked.
func (i *Inventory) Consume(qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if i.reserved < qty {
		return fmt.Errorf("%w: consume %d of %d reserved for item %s", ErrReservationMismatch, qty, i.reserved, i.itemID)
	}
	i.reserved -= qty
	return nil
}

// Restock adds qty units to available and stamps the restock time. There is no upper bound.
func (i *Inventory) Restock(qty int, at time.Time) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	i.available += qty
	i.lastRestockedAt = &at
	return nil
}

func (i *Inventory) setItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.itemID = id
	return nil
}

func nonNegative(name string, v int) error {
	if v < 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d is negative", v))
	}
	return nil
}
