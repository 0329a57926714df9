package ports

import (
	"context"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
)

// CustomerRepository stores customers. Email addresses are unique after normalization.
type CustomerRepository interface {
	// Add persists a new customer. A taken email yields errs.AlreadyExistsError.
	Add(ctx context.Context, c *customer.Customer) error
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)

	// FindByEmail returns errs.ObjectNotFoundError when no customer uses the address.
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)
}
