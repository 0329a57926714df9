package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

type RestockInventoryCommandHandler struct {
	uowFactory InventoryUoWFactory
	clock      kernel.Clock
}

func NewRestockInventoryCommandHandler(uowFactory InventoryUoWFactory, clock kernel.Clock) RestockInventoryCommandHandler {
	return RestockInventoryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle adds the quantity to the item's available stock.
func (h *RestockInventoryCommandHandler) Handle(ctx context.Context, cmd RestockInventoryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.InventoryRepository().Restock(ctx, cmd.ItemID(), cmd.Quantity(), h.clock.Now()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
