package commands

import (
	"context"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
)

// CreateItemCommandHandler stores the item and its ledger row in one transaction.
type CreateItemCommandHandler struct {
	uowFactory CatalogUoWFactory
	ids        kernel.IDGenerator
}

func NewCreateItemCommandHandler(uowFactory CatalogUoWFactory, ids kernel.IDGenerator) CreateItemCommandHandler {
	return CreateItemCommandHandler{
		uowFactory: uowFactory,
		ids:        ids,
	}
}

func (h *CreateItemCommandHandler) Handle(ctx context.Context, cmd CreateItemCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	fields := cmd.Item()
	opts := []catalog.ItemOption{catalog.WithDescription(fields.Description)}
	if fields.RequiresRefrigeration {
		opts = append(opts, catalog.RequiringRefrigeration())
	}
	if fields.RequiresSignature {
		opts = append(opts, catalog.RequiringSignature())
	}

	item, err := catalog.NewItem(h.ids.NewID(), fields.SKU, fields.Name, cmd.Category(), fields.Price, opts...)
	if err != nil {
		return kernel.UUID{}, err
	}

	stock, err := inventory.NewInventory(item.ID(), fields.InitialStock, fields.WarehouseLocation)
	if err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ItemRepository().Add(ctx, item); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.InventoryRepository().Add(ctx, stock); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return item.ID(), nil
}
