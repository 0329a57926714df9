package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetLowStockQueryHandler struct {
	db *gorm.DB
}

func NewGetLowStockQueryHandler(db *gorm.DB) GetLowStockQueryHandler {
	return GetLowStockQueryHandler{db: db}
}

// Handle returns low-stock rows, emptiest first.
func (h GetLowStockQueryHandler) Handle(ctx context.Context, query GetLowStockQuery) ([]LowStockView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt, args, err := sq.Select(
		"inv.item_id", "i.sku", "i.name",
		"inv.quantity_available", "inv.quantity_reserved",
		"inv.reorder_level", "inv.reorder_quantity", "inv.warehouse_location",
	).
		From("inventory inv").
		Join("items i ON i.id = inv.item_id").
		Where("inv.quantity_available <= inv.reorder_level").
		OrderBy("inv.quantity_available", "i.sku").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]LowStockView, 0)
	for rows.Next() {
		var (
			v  LowStockView
			id uuid.UUID
		)
		if err = rows.Scan(&id, &v.SKU, &v.Name, &v.Available, &v.Reserved,
			&v.ReorderLevel, &v.ReorderQuantity, &v.WarehouseLocation); err != nil {
			return nil, err
		}
		if v.ItemID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
