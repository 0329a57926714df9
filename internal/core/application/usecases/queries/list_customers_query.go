package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrListCustomersQueryIsNotConstructed = errors.New("ListCustomersQuery must be created via NewListCustomersQuery")

type ListCustomersQuery struct {
	guard guard.ConstructorGuard
}

func NewListCustomersQuery() ListCustomersQuery {
	return ListCustomersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListCustomersQuery) Validate() error {
	return q.guard.Validate(ErrListCustomersQueryIsNotConstructed)
}
