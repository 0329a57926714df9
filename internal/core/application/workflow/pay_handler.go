package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

// PayHandler charges the order total. The order is moved to
// PAYMENT_PROCESSING before the gateway call and settled in a second
// transaction. A decline or an exhausted retry budget fails the payment and
// releases the reserved stock.
type PayHandler struct {
	uowFactory commands.OrderInventoryUoWFactory
	gateway    ports.PaymentGateway
	retry      RetryPolicy
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewPayHandler(
	uowFactory commands.OrderInventoryUoWFactory,
	gateway ports.PaymentGateway,
	retry RetryPolicy,
	clock kernel.Clock,
	logger *slog.Logger,
) *PayHandler {
	return &PayHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		retry:      retry,
		clock:      clock,
		logger:     logger.With("component", "pay-handler"),
	}
}

func (h *PayHandler) Execute(ctx context.Context, exec ports.Execution) error {
	orderID, err := orderIDOf(exec)
	if err != nil {
		return err
	}

	o, done, err := h.start(ctx, orderID)
	if err != nil {
		return err
	}
	if done {
		setPaid(exec, o.PaymentReference())
		return nil
	}

	req := ports.PaymentRequest{
		OrderID:     o.ID(),
		OrderNumber: o.Number(),
		Amount:      o.Total(),
		Method:      o.PaymentMethod(),
	}
	var reference string
	chargeErr := h.retry.do(ctx, func(ctx context.Context) error {
		ref, callErr := h.gateway.Charge(ctx, req)
		if errors.Is(callErr, ports.ErrPaymentDeclined) {
			return backoff.Permanent(callErr)
		}
		reference = ref
		return callErr
	})
	if chargeErr != nil && ctx.Err() != nil {
		return chargeErr
	}

	return h.settle(ctx, exec, orderID, reference, chargeErr)
}

// start moves the order to PAYMENT_PROCESSING. done reports that the order
// was already paid.
func (h *PayHandler) start(ctx context.Context, orderID kernel.UUID) (*order.Order, bool, error) {
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
	case order.PaymentCompleted, order.Fulfilling, order.Shipping, order.Shipped, order.Delivered:
		return o, true, nil
	case order.PaymentFailed:
		return nil, false, fmt.Errorf("%w: order %s", ErrPaymentFailed, o.Number())
	case order.PaymentProcessing:
		return o, false, nil
	case order.Validating:
		if err = o.StartPayment(h.clock.Now()); err != nil {
			return nil, false, err
		}
		return o, false, commitOrder(ctx, uow, orderRepo, o)
	default:
		return nil, false, fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	}
}

func (h *PayHandler) settle(
	ctx context.Context,
	exec ports.Execution,
	orderID kernel.UUID,
	reference string,
	chargeErr error,
) error {
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
	if o.Status() != order.PaymentProcessing {
		if chargeErr == nil {
			h.logger.WarnContext(ctx, "order charged after it left payment processing",
				"order_number", o.Number(),
				"status", o.Status().String(),
				"payment_reference", reference)
		}
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	}

	now := h.clock.Now()
	if chargeErr != nil {
		if err = o.FailPayment(chargeErr.Error(), now); err != nil {
			return err
		}
		if err = commands.ReleaseReservedLines(ctx, uow.InventoryRepository(), o); err != nil {
			return err
		}
		if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "payment failed",
			"order_number", o.Number(),
			"error", chargeErr)
		exec.SetVariable(VarPaymentResult, ResultFailed)
		return fmt.Errorf("%w: order %s: %w", ErrPaymentFailed, o.Number(), chargeErr)
	}

	if err = o.CompletePayment(reference, now); err != nil {
		return err
	}
	if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
		return err
	}

	setPaid(exec, reference)
	return nil
}

func setPaid(exec ports.Execution, reference string) {
	exec.SetVariable(VarPaymentResult, ResultSuccess)
	exec.SetVariable(VarPaymentReference, reference)
}
