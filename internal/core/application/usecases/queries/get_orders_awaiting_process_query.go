package queries

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrdersAwaitingProcessQueryIsNotConstructed = errors.New(
	"GetOrdersAwaitingProcessQuery must be created via NewGetOrdersAwaitingProcessQuery",
)

// GetOrdersAwaitingProcessQuery finds pending orders created before
// createdBefore that never got a process instance attached.
type GetOrdersAwaitingProcessQuery struct {
	createdBefore time.Time
	limit         int

	guard guard.ConstructorGuard
}

func NewGetOrdersAwaitingProcessQuery(createdBefore time.Time, limit int) (GetOrdersAwaitingProcessQuery, error) {
	if createdBefore.IsZero() {
		return GetOrdersAwaitingProcessQuery{}, errs.NewValueIsRequiredError("created before")
	}
	if limit <= 0 || limit > MaxListLimit {
		return GetOrdersAwaitingProcessQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxListLimit)
	}
	return GetOrdersAwaitingProcessQuery{
		createdBefore: createdBefore,
		limit:         limit,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrdersAwaitingProcessQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersAwaitingProcessQueryIsNotConstructed)
}

func (q GetOrdersAwaitingProcessQuery) CreatedBefore() time.Time { return q.createdBefore }
func (q GetOrdersAwaitingProcessQuery) Limit() int               { return q.limit }
