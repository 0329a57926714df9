package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrListInventoryQueryIsNotConstructed = errors.New("ListInventoryQuery must be created via NewListInventoryQuery")

// ListInventoryQuery lists the whole stock ledger joined with the catalog.
type ListInventoryQuery struct {
	guard guard.ConstructorGuard
}

func NewListInventoryQuery() ListInventoryQuery {
	return ListInventoryQuery{guard: guard.NewConstructorGuard()}
}

func (q ListInventoryQuery) Validate() error {
	return q.guard.Validate(ErrListInventoryQueryIsNotConstructed)
}
