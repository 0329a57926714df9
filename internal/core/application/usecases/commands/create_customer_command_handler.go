package commands

import (
	"context"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
)

// CreateCustomerCommandHandler registers customers. A taken email surfaces as
// errs.AlreadyExistsError from the repository.
type CreateCustomerCommandHandler struct {
	uowFactory CustomerUoWFactory
	clock      kernel.Clock
	ids        kernel.IDGenerator
}

func NewCreateCustomerCommandHandler(
	uowFactory CustomerUoWFactory,
	clock kernel.Clock,
	ids kernel.IDGenerator,
) CreateCustomerCommandHandler {
	return CreateCustomerCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		ids:        ids,
	}
}

func (h *CreateCustomerCommandHandler) Handle(ctx context.Context, cmd CreateCustomerCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	c, err := customer.NewCustomer(h.ids.NewID(), cmd.Email(), cmd.FirstName(), cmd.LastName(), h.clock.Now())
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

	if err = uow.CustomerRepository().Add(ctx, c); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return c.ID(), nil
}
