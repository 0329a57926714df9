package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrCustomerIsRequired = errors.New("customer id or email is required")
	ErrItemsAreRequired   = errors.New("at least one order line is required")
)

// CustomerRef identifies the ordering customer either by ID or by email. When
// only an email is given, a customer is created on first use.
type CustomerRef struct {
	ID        kernel.UUID
	Email     string
	FirstName string
	LastName  string
}

// OrderLine is a requested quantity of a catalog item.
type OrderLine struct {
	ItemID   kernel.UUID
	Quantity int
}

// CreateOrderCommand represents a customer's request to place an order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(
//	    CustomerRef{Email: "ada@example.com", FirstName: "Ada"},
//	    []OrderLine{{ItemID: milkID, Quantity: 5}},
//	    address, "CREDIT_CARD",
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customer        CustomerRef
	lines           []OrderLine
	shippingAddress kernel.Address
	paymentMethod   string

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	customerRef CustomerRef,
	lines []OrderLine,
	shippingAddress kernel.Address,
	paymentMethod string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomer(customerRef),
		cmd.setLines(lines),
		cmd.setShippingAddress(shippingAddress),
		cmd.setPaymentMethod(paymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Customer() CustomerRef {
	return c.customer
}

// Lines returns a copy of the requested lines.
func (c CreateOrderCommand) Lines() []OrderLine {
	return append([]OrderLine(nil), c.lines...)
}

func (c CreateOrderCommand) ShippingAddress() kernel.Address {
	return c.shippingAddress
}

func (c CreateOrderCommand) PaymentMethod() string {
	return c.paymentMethod
}

func (c *CreateOrderCommand) setCustomer(ref CustomerRef) error {
	ref.Email = customer.NormalizeEmail(ref.Email)
	if ref.ID.IsZero() && ref.Email == "" {
		return ErrCustomerIsRequired
	}
	ref.FirstName = strings.TrimSpace(ref.FirstName)
	ref.LastName = strings.TrimSpace(ref.LastName)
	c.customer = ref
	return nil
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrItemsAreRequired
	}
	for i, l := range lines {
		if err := l.ItemID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("line %d item", i+1), err)
		}
		if l.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError(fmt.Sprintf("line %d quantity", i+1), l.Quantity, 1, "unbounded")
		}
	}
	c.lines = append([]OrderLine(nil), lines...)
	return nil
}

func (c *CreateOrderCommand) setShippingAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.shippingAddress = address
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method string) error {
	method = strings.TrimSpace(method)
	if method == "" {
		return errs.NewValueIsRequiredError("payment method")
	}
	c.paymentMethod = strings.ToUpper(method)
	return nil
}
