package order

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem or RestoreLineItem")

// ReservationState tracks what happened to the stock a line item claimed.
type ReservationState string

const (
	ReservationNone     ReservationState = "NONE"
	ReservationReserved ReservationState = "RESERVED"
	ReservationReleased ReservationState = "RELEASED"
	ReservationConsumed ReservationState = "CONSUMED"
)

func (r ReservationState) Validate() error {
	switch r {
	case ReservationNone, ReservationReserved, ReservationReleased, ReservationConsumed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("reservation", fmt.Errorf("%q is not a reservation state", r))
	}
}

// LineItem is an order line. Name, category, refrigeration flag and unit price
// are snapshots of the catalog item taken when the order was placed; later
// catalog changes never alter them.
//
// orderID is a back reference for persistence only and takes no part in IsEqual.
type LineItem struct {
	id                    kernel.UUID
	orderID               kernel.UUID
	itemID                kernel.UUID
	itemName              string
	category              catalog.Category
	requiresRefrigeration bool
	quantity              int
	unitPrice             kernel.Money
	reservation           ReservationState

	isConstructed bool
}

// NewLineItem snapshots item for quantity units.
func NewLineItem(id kernel.UUID, item *catalog.Item, quantity int) (*LineItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return RestoreLineItem(id, item.ID(), item.Name(), item.Category(), item.RequiresRefrigeration(),
		quantity, item.Price(), ReservationNone)
}

func RestoreLineItem(
	id, itemID kernel.UUID,
	itemName string,
	category catalog.Category,
	requiresRefrigeration bool,
	quantity int,
	unitPrice kernel.Money,
	reservation ReservationState,
) (*LineItem, error) {
	var qtyErr error
	if quantity <= 0 {
		qtyErr = errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}

	if err := errors.Join(
		id.Validate(),
		itemID.Validate(),
		qtyErr,
		unitPrice.Validate(),
		reservation.Validate(),
	); err != nil {
		return nil, err
	}

	return &LineItem{
		id:                    id,
		itemID:                itemID,
		itemName:              itemName,
		category:              category,
		requiresRefrigeration: requiresRefrigeration,
		quantity:              quantity,
		unitPrice:             unitPrice,
		reservation:           reservation,
		isConstructed:         true,
	}, nil
}

func (l *LineItem) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLineItemIsNotConstructed
	}
	return nil
}

// IsEqual compares line identity; the order back reference is ignored.
func (l *LineItem) IsEqual(other *LineItem) bool {
	return other != nil && l.id.IsEqual(other.id)
}

func (l *LineItem) ID() kernel.UUID {
	return l.id
}

func (l *LineItem) OrderID() kernel.UUID {
	return l.orderID
}

func (l *LineItem) ItemID() kernel.UUID {
	return l.itemID
}

func (l *LineItem) ItemName() string {
	return l.itemName
}

func (l *LineItem) Category() catalog.Category {
	return l.category
}

func (l *LineItem) RequiresRefrigeration() bool {
	return l.requiresRefrigeration
}

func (l *LineItem) Quantity() int {
	return l.quantity
}

func (l *LineItem) UnitPrice() kernel.Money {
	return l.unitPrice
}

// Subtotal is quantity times the snapshotted unit price.
func (l *LineItem) Subtotal() kernel.Money {
	return l.unitPrice.Multiply(l.quantity)
}

func (l *LineItem) Reservation() ReservationState {
	return l.reservation
}

func (l *LineItem) markReservation(from, to ReservationState) error {
	if l.reservation == to {
		return nil
	}
	if l.reservation != from {
		return errs.NewValueIsInvalidErrorWithCause("reservation",
			fmt.Errorf("line %s is %s, cannot become %s", l.id, l.reservation, to))
	}
	l.reservation = to
	return nil
}
