package catalog

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem or RestoreItem")

// Item is a sellable catalog entry. Its inventory row is a separate aggregate
// keyed by the item ID.
type Item struct {
	id                    kernel.UUID
	sku                   string
	name                  string
	description           string
	category              Category
	price                 kernel.Money
	requiresRefrigeration bool
	requiresSignature     bool

	isConstructed bool
}

// ItemOption sets an optional attribute of an Item.
type ItemOption func(*Item)

func WithDescription(description string) ItemOption {
	return func(i *Item) { i.description = strings.TrimSpace(description) }
}

// RequiringRefrigeration marks perishable goods; the food shipping rule
// switches to refrigerated express for orders containing one.
func RequiringRefrigeration() ItemOption {
	return func(i *Item) { i.requiresRefrigeration = true }
}

func RequiringSignature() ItemOption {
	return func(i *Item) { i.requiresSignature = true }
}

// NewItem creates a catalog item. SKU and name are required and the price must be a constructed Money.
func NewItem(id kernel.UUID, sku, name string, category Category, price kernel.Money, opts ...ItemOption) (*Item, error) {
	item := &Item{isConstructed: true}

	if err := errors.Join(
		item.setID(id),
		item.setSKU(sku),
		item.setName(name),
		item.setCategory(category),
		item.setPrice(price),
	); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(item)
	}
	return item, nil
}

// RestoreItem rebuilds an item from persistence.
func RestoreItem(
	id kernel.UUID,
	sku, name, description string,
	category Category,
	price kernel.Money,
	requiresRefrigeration, requiresSignature bool,
) (*Item, error) {
	item, err := NewItem(id, sku, name, category, price, WithDescription(description))
	if err != nil {
		return nil, err
	}
	item.requiresRefrigeration = requiresRefrigeration
	item.requiresSignature = requiresSignature
	return item, nil
}

func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i *Item) ID() kernel.UUID             { return i.id }
func (i *Item) SKU() string                 { return i.sku }
func (i *Item) Name() string                { return i.name }
func (i *Item) Description() string         { return i.description }
func (i *Item) Category() Category          { return i.category }
func (i *Item) Price() kernel.Money         { return i.price }
func (i *Item) RequiresRefrigeration() bool { return i.requiresRefrigeration }
func (i *Item) RequiresSignature() bool     { return i.requiresSignature }

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setSKU(sku string) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return errs.NewValueIsRequiredError("sku")
	}
	i.sku = sku
	return nil
}

func (i *Item) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setCategory(category Category) error {
	if category == "" {
		return errs.NewValueIsRequiredError("category")
	}
	i.category = category
	return nil
}

func (i *Item) setPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("price", err)
	}
	i.price = price
	return nil
}
