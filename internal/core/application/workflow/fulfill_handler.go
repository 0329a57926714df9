package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// FulfillHandler has the warehouse pick the reserved lines and then consumes
// their reservations. Fulfillment is done once no line is still reserved.
type FulfillHandler struct {
	uowFactory commands.OrderInventoryUoWFactory
	warehouse  ports.Warehouse
	retry      RetryPolicy
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewFulfillHandler(
	uowFactory commands.OrderInventoryUoWFactory,
	warehouse ports.Warehouse,
	retry RetryPolicy,
	clock kernel.Clock,
	logger *slog.Logger,
) *FulfillHandler {
	return &FulfillHandler{
		uowFactory: uowFactory,
		warehouse:  warehouse,
		retry:      retry,
		clock:      clock,
		logger:     logger.With("component", "fulfill-handler"),
	}
}

func (h *FulfillHandler) Execute(ctx context.Context, exec ports.Execution) error {
	orderID, err := orderIDOf(exec)
	if err != nil {
		return err
	}

	o, done, err := h.start(ctx, orderID)
	if err != nil {
		return err
	}
	if done {
		exec.SetVariable(VarFulfillmentResult, ResultSuccess)
		return nil
	}

	req := ports.PickRequest{
		OrderID:      o.ID(),
		OrderNumber:  o.Number(),
		Refrigerated: o.RequiresRefrigeration(),
	}
	for _, line := range o.LinesIn(order.ReservationReserved) {
		req.Lines = append(req.Lines, ports.PickLine{
			ItemID:   line.ItemID(),
			Name:     line.ItemName(),
			Quantity: line.Quantity(),
		})
	}

	pickErr := h.retry.do(ctx, func(ctx context.Context) error {
		return h.warehouse.PickAndPack(ctx, req)
	})
	if pickErr != nil && ctx.Err() != nil {
		return pickErr
	}

	return h.settle(ctx, exec, orderID, pickErr)
}

// start moves the order to FULFILLING. done reports that fulfillment already
// finished.
func (h *FulfillHandler) start(ctx context.Context, orderID kernel.UUID) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	//nolint:exhaustive // every other status is not processable
	switch o.Status() {
	case order.Shipping, order.Shipped, order.Delivered:
		return o, true, nil
	case order.FulfillmentFailed:
		return nil, false, fmt.Errorf("%w: order %s", ErrFulfillmentFailed, o.Number())
	case order.Fulfilling:
		return o, len(o.LinesIn(order.ReservationReserved)) == 0, nil
	case order.PaymentCompleted:
		if err = o.StartFulfillment(h.clock.Now()); err != nil {
			return nil, false, err
		}
		return o, false, commitOrder(ctx, uow, orderRepo, o)
	default:
		return nil, false, fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	}
}

func (h *FulfillHandler) settle(ctx context.Context, exec ports.Execution, orderID kernel.UUID, pickErr error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
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
	if o.Status() != order.Fulfilling {
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	}

	ledger := uow.InventoryRepository()
	if pickErr != nil {
		if err = o.FailFulfillment(pickErr.Error(), h.clock.Now()); err != nil {
			return err
		}
		if err = commands.ReleaseReservedLines(ctx, ledger, o); err != nil {
			return err
		}
		if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "fulfillment failed",
			"order_number", o.Number(),
			"error", pickErr)
		exec.SetVariable(VarFulfillmentResult, ResultFailed)
		return fmt.Errorf("%w: order %s: %w", ErrFulfillmentFailed, o.Number(), pickErr)
	}

	for _, line := range o.LinesIn(order.ReservationReserved) {
		if err = ledger.Consume(ctx, line.ItemID(), line.Quantity()); err != nil {
			return err
		}
		if err = o.MarkLineConsumed(line.ID()); err != nil {
			return err
		}
	}
	if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
		return err
	}

	exec.SetVariable(VarFulfillmentResult, ResultSuccess)
	return nil
}
