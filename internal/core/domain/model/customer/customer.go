// Package customer holds the Customer aggregate. Customers are shared by
// orders through their ID and are unique by email.
package customer

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer or RestoreCustomer")

type Customer struct {
	id        kernel.UUID
	email     string
	firstName string
	lastName  string
	createdAt time.Time

	isConstructed bool
}

// NewCustomer registers a customer. The email is normalized to lower case and
// is the merge key used when orders are submitted by email only.
func NewCustomer(id kernel.UUID, email, firstName, lastName string, createdAt time.Time) (*Customer, error) {
	c := &Customer{
		firstName:     strings.TrimSpace(firstName),
		lastName:      strings.TrimSpace(lastName),
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(c.setID(id), c.setEmail(email)); err != nil {
		return nil, err
	}
	return c, nil
}

func RestoreCustomer(id kernel.UUID, email, firstName, lastName string, createdAt time.Time) (*Customer, error) {
	return NewCustomer(id, email, firstName, lastName, createdAt)
}

// NormalizeEmail returns the canonical form under which customers are looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Customer) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomerIsNotConstructed
	}
	return nil
}

func (c *Customer) ID() kernel.UUID {
	return c.id
}

func (c *Customer) Email() string {
	return c.email
}

func (c *Customer) FirstName() string {
	return c.firstName
}

func (c *Customer) LastName() string {
	return c.lastName
}

// FullName joins first and last name, skipping blanks.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.firstName + " " + c.lastName)
}

func (c *Customer) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Customer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Customer) setEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errs.NewValueIsInvalidErrorWithCause("email", fmt.Errorf("%q is not an email address", email))
	}
	c.email = email
	return nil
}
