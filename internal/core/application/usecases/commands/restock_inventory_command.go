package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrRestockInventoryCommandIsNotConstructed = errors.New(
	"RestockInventoryCommand must be created via NewRestockInventoryCommand constructor",
)

type RestockInventoryCommand struct { //nolint:recvcheck //using for validation
	itemID   kernel.UUID
	quantity int

	guard guard.ConstructorGuard
}

func NewRestockInventoryCommand(itemID kernel.UUID, quantity int) (RestockInventoryCommand, error) {
	if err := errors.Join(itemID.Validate(), inventory.ValidateQuantity(quantity)); err != nil {
		return RestockInventoryCommand{}, err
	}

	return RestockInventoryCommand{
		itemID:   itemID,
		quantity: quantity,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RestockInventoryCommand) Validate() error {
	return c.guard.Validate(ErrRestockInventoryCommandIsNotConstructed)
}

func (c RestockInventoryCommand) ItemID() kernel.UUID { return c.itemID }
func (c RestockInventoryCommand) Quantity() int       { return c.quantity }
