package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListCustomersQueryHandler struct {
	db *gorm.DB
}

func NewListCustomersQueryHandler(db *gorm.DB) ListCustomersQueryHandler {
	return ListCustomersQueryHandler{db: db}
}

// Handle returns every customer ordered by email.
func (h ListCustomersQueryHandler) Handle(ctx context.Context, query ListCustomersQuery) ([]CustomerView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt, args, err := sq.Select("id", "email", "first_name", "last_name", "created_at").
		From("customers").
		OrderBy("email").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]CustomerView, 0)
	for rows.Next() {
		var (
			v  CustomerView
			id uuid.UUID
		)
		if err = rows.Scan(&id, &v.Email, &v.FirstName, &v.LastName, &v.CreatedAt); err != nil {
			return nil, err
		}
		if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
