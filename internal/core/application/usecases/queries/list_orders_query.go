package queries

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var ErrListOrdersQueryIsNotConstructed = errors.New("ListOrdersQuery must be created via NewListOrdersQuery")

// ListOrdersFilter is the raw, optional input of ListOrdersQuery. Blank fields
// do not filter; a zero Limit means DefaultListLimit.
type ListOrdersFilter struct {
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

type ListOrdersQuery struct {
	status     *order.Status
	customerID *kernel.UUID
	limit      int
	offset     int

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(f ListOrdersFilter) (ListOrdersQuery, error) {
	q := ListOrdersQuery{limit: f.Limit, offset: f.Offset, guard: guard.NewConstructorGuard()}

	if s := strings.TrimSpace(f.Status); s != "" {
		status, err := order.ParseStatus(s)
		if err != nil {
			return ListOrdersQuery{}, err
		}
		q.status = &status
	}
	if s := strings.TrimSpace(f.CustomerID); s != "" {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return ListOrdersQuery{}, err
		}
		q.customerID = &id
	}

	if q.limit == 0 {
		q.limit = DefaultListLimit
	}
	if q.limit < 0 || q.limit > MaxListLimit {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", f.Limit, 1, MaxListLimit)
	}
	if q.offset < 0 {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("offset", f.Offset, 0, "unbounded")
	}
	return q, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Status() *order.Status    { return q.status }
func (q ListOrdersQuery) CustomerID() *kernel.UUID { return q.customerID }
func (q ListOrdersQuery) Limit() int               { return q.limit }
func (q ListOrdersQuery) Offset() int              { return q.offset }
