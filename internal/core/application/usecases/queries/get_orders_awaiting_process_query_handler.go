package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrdersAwaitingProcessQueryHandler struct {
	db *gorm.DB
}

func NewGetOrdersAwaitingProcessQueryHandler(db *gorm.DB) GetOrdersAwaitingProcessQueryHandler {
	return GetOrdersAwaitingProcessQueryHandler{db: db}
}

// Handle returns the ids of matching orders, oldest first.
func (h GetOrdersAwaitingProcessQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersAwaitingProcessQuery,
) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt, args, err := sq.Select("id").
		From("orders").
		Where(sq.Eq{"status": order.Pending.String(), "process_instance_id": ""}).
		Where(sq.Lt{"created_at": query.CreatedBefore()}).
		OrderBy("created_at").
		Limit(uint64(query.Limit())).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]kernel.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, orderID)
	}
	return ids, rows.Err()
}
