package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateItemCommandIsNotConstructed = errors.New(
	"CreateItemCommand must be created via NewCreateItemCommand constructor",
)

// NewItem describes a catalog item and its opening stock.
type NewItem struct {
	SKU                   string
	Name                  string
	Description           string
	Category              string
	Price                 kernel.Money
	RequiresRefrigeration bool
	RequiresSignature     bool
	InitialStock          int
	WarehouseLocation     string
}

// CreateItemCommand adds an item to the catalog and opens its ledger row.
type CreateItemCommand struct { //nolint:recvcheck //using for validation
	item     NewItem
	category catalog.Category

	guard guard.ConstructorGuard
}

func NewCreateItemCommand(item NewItem) (CreateItemCommand, error) {
	category, catErr := catalog.NewCategory(item.Category)

	var stockErr error
	if item.InitialStock < 0 {
		stockErr = errs.NewValueIsOutOfRangeError("initial stock", item.InitialStock, 0, "unbounded")
	}

	if err := errors.Join(catErr, stockErr, item.Price.Validate()); err != nil {
		return CreateItemCommand{}, err
	}

	item.WarehouseLocation = strings.TrimSpace(item.WarehouseLocation)
	return CreateItemCommand{
		item:     item,
		category: category,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreateItemCommand) Validate() error {
	return c.guard.Validate(ErrCreateItemCommandIsNotConstructed)
}

func (c CreateItemCommand) Item() NewItem {
	return c.item
}

func (c CreateItemCommand) Category() catalog.Category {
	return c.category
}
