package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateCustomerCommandIsNotConstructed = errors.New(
	"CreateCustomerCommand must be created via NewCreateCustomerCommand constructor",
)

type CreateCustomerCommand struct { //nolint:recvcheck //using for validation
	email     string
	firstName string
	lastName  string

	guard guard.ConstructorGuard
}

func NewCreateCustomerCommand(email, firstName, lastName string) (CreateCustomerCommand, error) {
	email = customer.NormalizeEmail(email)
	if email == "" {
		return CreateCustomerCommand{}, errs.NewValueIsRequiredError("email")
	}

	return CreateCustomerCommand{
		email:     email,
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreateCustomerCommand) Validate() error {
	return c.guard.Validate(ErrCreateCustomerCommandIsNotConstructed)
}

func (c CreateCustomerCommand) Email() string     { return c.email }
func (c CreateCustomerCommand) FirstName() string { return c.firstName }
func (c CreateCustomerCommand) LastName() string  { return c.lastName }
