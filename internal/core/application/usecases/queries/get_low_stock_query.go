package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrGetLowStockQueryIsNotConstructed = errors.New("GetLowStockQuery must be created via NewGetLowStockQuery")

// GetLowStockQuery lists ledger rows whose available count dropped to the
// reorder level or below.
type GetLowStockQuery struct {
	guard guard.ConstructorGuard
}

func NewGetLowStockQuery() GetLowStockQuery {
	return GetLowStockQuery{guard: guard.NewConstructorGuard()}
}

func (q GetLowStockQuery) Validate() error {
	return q.guard.Validate(ErrGetLowStockQueryIsNotConstructed)
}
