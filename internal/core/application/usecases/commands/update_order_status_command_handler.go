package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

const overrideCancelReason = "cancelled by status override"

// UpdateOrderStatusCommandHandler sets an order status directly, bypassing the
// lifecycle graph. Terminal orders are refused. CANCELLED takes the cancel path
// so that stock and the process instance are released too.
type UpdateOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	canceller  CancelOrderCommandHandler
	clock      kernel.Clock
}

func NewUpdateOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	canceller CancelOrderCommandHandler,
	clock kernel.Clock,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		canceller:  canceller,
		clock:      clock,
	}
}

func (h *UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.Status() == order.Cancelled {
		cancel, err := NewCancelOrderCommand(cmd.OrderID(), overrideCancelReason)
		if err != nil {
			return err
		}
		return h.canceller.Handle(ctx, cancel)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = o.OverrideStatus(cmd.Status(), h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
