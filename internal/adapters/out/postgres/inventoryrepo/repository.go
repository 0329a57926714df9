// Package inventoryrepo is the PostgreSQL inventory ledger. Reservations are
// conditional UPDATE statements, so the database row is the only arbiter of
// concurrent stock changes.
package inventoryrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryDTO struct {
	ItemID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	QuantityAvailable int        `gorm:"not null"`
	QuantityReserved  int        `gorm:"not null;default:0"`
	ReorderLevel      int        `gorm:"not null"`
	ReorderQuantity   int        `gorm:"not null"`
	WarehouseLocation string     `gorm:"type:varchar(100);not null;default:''"`
	LastRestockedAt   *time.Time ``
}

func (InventoryDTO) TableName() string {
	return "inventory"
}

func toDomain(dto InventoryDTO) (*inventory.Inventory, error) {
	id, err := kernel.UUIDFromBytes(dto.ItemID[:])
	if err != nil {
		return nil, err
	}
	return inventory.RestoreInventory(id, dto.QuantityAvailable, dto.QuantityReserved,
		dto.ReorderLevel, dto.ReorderQuantity, dto.WarehouseLocation, dto.LastRestockedAt)
}

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) Add(ctx context.Context, inv *inventory.Inventory) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	dto := InventoryDTO{
		ItemID:            inv.ItemID().Bytes(),
		QuantityAvailable: inv.Available(),
		QuantityReserved:  inv.Reserved(),
		ReorderLevel:      inv.ReorderLevel(),
		ReorderQuantity:   inv.ReorderQuantity(),
		WarehouseLocation: inv.WarehouseLocation(),
		LastRestockedAt:   inv.LastRestockedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.MapUnique(err, "inventory", inv.ItemID().String())
	}
	return nil
}

func (r *GormInventoryRepository) Get(ctx context.Context, itemID kernel.UUID) (*inventory.Inventory, error) {
	if err := itemID.Validate(); err != nil {
		return nil, err
	}

	var dto InventoryDTO
	if err := r.db.WithContext(ctx).First(&dto, "item_id = ?", itemID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("inventory", itemID.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// CheckAvailability reports whether at least qty units are available right now.
// The answer is advisory; only Reserve is authoritative.
func (r *GormInventoryRepository) CheckAvailability(ctx context.Context, itemID kernel.UUID, qty int) (bool, error) {
	if err := errors.Join(itemID.Validate(), inventory.ValidateQuantity(qty)); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&InventoryDTO{}).
		Where("item_id = ? AND quantity_available >= ?", itemID.Bytes(), qty).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Reserve moves qty units from available to reserved in a single guarded
// UPDATE. Two orders racing for the last units cannot both succeed: the loser
// matches no row and gets inventory.ErrInsufficientStock. A missing ledger row
// yields errs.ErrObjectNotFound.
//
// Example:
//
//	uow := factory.Create()
//	_ = uow.Begin(ctx)
//	defer uow.Rollback(ctx)
//
//	if err := uow.InventoryRepository().Reserve(ctx, line.ItemID(), line.Quantity()); err != nil {
//	    if errors.Is(err, inventory.ErrInsufficientStock) {
//	        unavailable = append(unavailable, line.ItemName())
//	    }
//	}
func (r *GormInventoryRepository) Reserve(ctx context.Context, itemID kernel.UUID, qty int) error {
	return r.apply(ctx, itemID, qty,
		"quantity_available >= ?",
		map[string]any{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"quantity_reserved":  gorm.Expr("quantity_reserved + ?", qty),
		},
		func(inv *inventory.Inventory) error { return inv.Reserve(qty) },
	)
}

// Release returns reserved units to available stock, e.g. when an order is
// cancelled or rejected. Releasing more than is reserved fails with
// inventory.ErrReservationMismatch.
func (r *GormInventoryRepository) Release(ctx context.Context, itemID kernel.UUID, qty int) error {
	return r.apply(ctx, itemID, qty,
		"quantity_reserved >= ?",
		map[string]any{
			"quantity_available": gorm.Expr("quantity_available + ?", qty),
			"quantity_reserved":  gorm.Expr("quantity_reserved - ?", qty),
		},
		func(inv *inventory.Inventory) error { return inv.Release(qty) },
	)
}

// Consume removes reserved units from the ledger once the warehouse picked them.
func (r *GormInventoryRepository) Consume(ctx context.Context, itemID kernel.UUID, qty int) error {
	return r.apply(ctx, itemID, qty,
		"quantity_reserved >= ?",
		map[string]any{
			"quantity_reserved": gorm.Expr("quantity_reserved - ?", qty),
		},
		func(inv *inventory.Inventory) error { return inv.Consume(qty) },
	)
}

// Restock adds qty units to available stock and stamps last_restocked_at.
func (r *GormInventoryRepository) Restock(ctx context.Context, itemID kernel.UUID, qty int, at time.Time) error {
	return r.apply(ctx, itemID, qty,
		"? > 0",
		map[string]any{
			"quantity_available": gorm.Expr("quantity_available + ?", qty),
			"last_restocked_at":  at,
		},
		func(inv *inventory.Inventory) error { return inv.Restock(qty, at) },
	)
}

// apply runs one guarded UPDATE. When no row matched, the row is reloaded and
// the same change is replayed on the domain object to produce the precise error.
func (r *GormInventoryRepository) apply(
	ctx context.Context,
	itemID kernel.UUID,
	qty int,
	guard string,
	changes map[string]any,
	replay func(*inventory.Inventory) error,
) error {
	if err := errors.Join(itemID.Validate(), inventory.ValidateQuantity(qty)); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&InventoryDTO{}).
		Where("item_id = ?", itemID.Bytes()).
		Where(guard, qty).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if err = replay(current); err != nil {
		return err
	}
	// The row changed between the UPDATE and the reload.
	return fmt.Errorf("%w: concurrent update of item %s", inventory.ErrInsufficientStock, itemID)
}
