package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ValidateHandler reserves the stock of every line. If any line cannot be
// reserved the order fails validation and nothing stays reserved.
type ValidateHandler struct {
	uowFactory commands.OrderInventoryUoWFactory
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewValidateHandler(
	uowFactory commands.OrderInventoryUoWFactory,
	clock kernel.Clock,
	logger *slog.Logger,
) *ValidateHandler {
	return &ValidateHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "validate-handler"),
	}
}

func (h *ValidateHandler) Execute(ctx context.Context, exec ports.Execution) error {
	orderID, err := orderIDOf(exec)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	switch {
	case o.Status() == order.ValidationFailed:
		exec.SetVariable(VarValidationResult, ResultFailed)
		return &ValidationFailedError{OrderNumber: o.Number()}
	case o.Status().IsTerminal():
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	case o.Status() != order.Pending && o.Status() != order.Validating:
		setValidated(exec, o)
		return nil
	}

	now := h.clock.Now()
	if err = o.StartValidation(now); err != nil {
		return err
	}

	ledger := uow.InventoryRepository()
	var reserved []*order.LineItem
	var unavailable []string
	for _, line := range o.LinesIn(order.ReservationNone) {
		reserveErr := ledger.Reserve(ctx, line.ItemID(), line.Quantity())
		switch {
		case reserveErr == nil:
			reserved = append(reserved, line)
		case errors.Is(reserveErr, inventory.ErrInsufficientStock), errors.Is(reserveErr, errs.ErrObjectNotFound):
			unavailable = append(unavailable, line.ItemName())
		default:
			return reserveErr
		}
	}

	if len(unavailable) > 0 {
		for _, line := range reserved {
			if err = ledger.Release(ctx, line.ItemID(), line.Quantity()); err != nil {
				return err
			}
		}
		if err = o.FailValidation(unavailable, now); err != nil {
			return err
		}
		if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "order failed validation",
			"order_number", o.Number(),
			"unavailable", unavailable)
		exec.SetVariable(VarValidationResult, ResultFailed)
		return &ValidationFailedError{OrderNumber: o.Number(), Items: unavailable}
	}

	for _, line := range reserved {
		if err = o.MarkLineReserved(line.ID()); err != nil {
			return err
		}
	}
	if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
		return err
	}

	setValidated(exec, o)
	return nil
}

func setValidated(exec ports.Execution, o *order.Order) {
	exec.SetVariable(VarValidationResult, ResultPassed)
	exec.SetVariable(VarTotalAmount, o.Total().String())
	exec.SetVariable(VarRequiresRefrigeration, o.RequiresRefrigeration())
}
