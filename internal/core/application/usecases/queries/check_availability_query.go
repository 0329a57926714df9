package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrCheckAvailabilityQueryIsNotConstructed = errors.New(
	"CheckAvailabilityQuery must be created via NewCheckAvailabilityQuery",
)

type CheckAvailabilityQuery struct {
	itemID   kernel.UUID
	quantity int

	guard guard.ConstructorGuard
}

func NewCheckAvailabilityQuery(itemID kernel.UUID, quantity int) (CheckAvailabilityQuery, error) {
	if err := errors.Join(itemID.Validate(), inventory.ValidateQuantity(quantity)); err != nil {
		return CheckAvailabilityQuery{}, err
	}
	return CheckAvailabilityQuery{itemID: itemID, quantity: quantity, guard: guard.NewConstructorGuard()}, nil
}

func (q CheckAvailabilityQuery) Validate() error {
	return q.guard.Validate(ErrCheckAvailabilityQueryIsNotConstructed)
}

func (q CheckAvailabilityQuery) ItemID() kernel.UUID { return q.itemID }
func (q CheckAvailabilityQuery) Quantity() int       { return q.quantity }
