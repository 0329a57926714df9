package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle lists orders newest first.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	builder := sq.Select("id", "order_number", "customer_id", "status", "total_amount", "created_at", "updated_at").
		From("orders").
		OrderBy("created_at DESC", "order_number DESC").
		Limit(uint64(query.Limit())).
		Offset(uint64(query.Offset()))
	if s := query.Status(); s != nil {
		builder = builder.Where(sq.Eq{"status": s.String()})
	}
	if c := query.CustomerID(); c != nil {
		builder = builder.Where(sq.Eq{"customer_id": c.String()})
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]OrderSummary, 0)
	for rows.Next() {
		var (
			s          OrderSummary
			id, custID uuid.UUID
		)
		if err = rows.Scan(&id, &s.Number, &custID, &s.Status, &s.TotalAmount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if s.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if s.CustomerID, err = kernel.UUIDFromBytes(custID[:]); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
