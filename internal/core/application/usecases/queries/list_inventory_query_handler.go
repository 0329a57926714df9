package queries

import (
	"context"
	"database/sql"

	"orderflow/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListInventoryQueryHandler struct {
	db *gorm.DB
}

func NewListInventoryQueryHandler(db *gorm.DB) ListInventoryQueryHandler {
	return ListInventoryQueryHandler{db: db}
}

// Handle returns one row per stocked item ordered by SKU.
func (h ListInventoryQueryHandler) Handle(ctx context.Context, query ListInventoryQuery) ([]InventoryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt, args, err := sq.Select(
		"inv.item_id", "i.sku", "i.name", "i.category",
		"inv.quantity_available", "inv.quantity_reserved",
		"inv.reorder_level", "inv.reorder_quantity",
		"inv.warehouse_location", "inv.last_restocked_at",
	).
		From("inventory inv").
		Join("items i ON i.id = inv.item_id").
		OrderBy("i.sku").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]InventoryView, 0)
	for rows.Next() {
		var (
			v         InventoryView
			id        uuid.UUID
			restocked sql.NullTime
		)
		if err = rows.Scan(&id, &v.SKU, &v.Name, &v.Category, &v.Available, &v.Reserved,
			&v.ReorderLevel, &v.ReorderQuantity, &v.WarehouseLocation, &restocked); err != nil {
			return nil, err
		}
		if v.ItemID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if restocked.Valid {
			at := restocked.Time
			v.LastRestockedAt = &at
		}
		v.LowStock = v.Available <= v.ReorderLevel
		result = append(result, v)
	}
	return result, rows.Err()
}
