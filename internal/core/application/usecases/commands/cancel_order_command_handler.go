package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

const (
	cancelRetries    = 2
	cancelRetryDelay = 50 * time.Millisecond
)

// CancelOrderCommandHandler cancels an order, returns its reserved stock to the
// ledger and stops the order's process instance.
type CancelOrderCommandHandler struct {
	uowFactory OrderInventoryUoWFactory
	terminator ProcessTerminator
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(
	uowFactory OrderInventoryUoWFactory,
	terminator ProcessTerminator,
	clock kernel.Clock,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		terminator: terminator,
		clock:      clock,
		logger:     logger.With("component", "cancel-order"),
	}
}

// Handle commits the cancellation before touching the engine. A failed
// termination is logged; the order stays cancelled.
//
// A work handler may save the order between load and commit. The cancellation
// is then retried on the fresh order, so reservations made meanwhile are
// released too.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var cancelled *order.Order
	err := backoff.Retry(func() error {
		o, err := h.cancel(ctx, cmd)
		if err != nil {
			if errors.Is(err, errs.ErrVersionIsInvalid) {
				return err
			}
			return backoff.Permanent(err)
		}
		cancelled = o
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(cancelRetryDelay), cancelRetries), ctx))
	if err != nil {
		return err
	}

	h.terminate(ctx, cancelled, cmd.Reason())
	return nil
}

func (h *CancelOrderCommandHandler) cancel(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = o.Cancel(cmd.Reason(), h.clock.Now()); err != nil {
		return nil, err
	}

	if err = ReleaseReservedLines(ctx, uow.InventoryRepository(), o); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	return o, uow.Commit(ctx)
}

func (h *CancelOrderCommandHandler) terminate(ctx context.Context, o *order.Order, reason string) {
	if o.ProcessInstanceID() == "" {
		return
	}
	if err := h.terminator.TerminateProcess(ctx, o.ProcessInstanceID(), reason); err != nil {
		h.logger.WarnContext(ctx, "process termination failed",
			"order_id", o.ID().String(),
			"process_instance_id", o.ProcessInstanceID(),
			"error", err)
	}
}

// ReleaseReservedLines returns every still reserved line of o to available stock
// and records the release on the line.
func ReleaseReservedLines(ctx context.Context, ledger ports.InventoryRepository, o *order.Order) error {
	for _, line := range o.LinesIn(order.ReservationReserved) {
		if err := ledger.Release(ctx, line.ItemID(), line.Quantity()); err != nil {
			return err
		}
		if err := o.MarkLineReleased(line.ID()); err != nil {
			return err
		}
	}
	return nil
}
