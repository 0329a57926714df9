package workflow

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// RejectHandler runs after an approval task was completed with a negative
// decision. It cancels the order and returns its reserved stock.
type RejectHandler struct {
	uowFactory commands.OrderInventoryUoWFactory
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewRejectHandler(
	uowFactory commands.OrderInventoryUoWFactory,
	clock kernel.Clock,
	logger *slog.Logger,
) *RejectHandler {
	return &RejectHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "reject-handler"),
	}
}

func (h *RejectHandler) Execute(ctx context.Context, exec ports.Execution) error {
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
	if o.Status().IsTerminal() {
		return nil
	}

	reason := rejectionReason(o)
	if err = o.Cancel(reason, h.clock.Now()); err != nil {
		return err
	}
	if err = commands.ReleaseReservedLines(ctx, uow.InventoryRepository(), o); err != nil {
		return err
	}
	if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order rejected at approval",
		"order_number", o.Number(),
		"reason", reason)
	return nil
}

// rejectionReason names the latest negative decision and its comments.
func rejectionReason(o *order.Order) string {
	approvals := o.Approvals()
	for i := len(approvals) - 1; i >= 0; i-- {
		a := approvals[i]
		if a.Approved() {
			continue
		}
		reason := "rejected at " + a.ApprovalType() + " by " + a.Approver()
		if a.Comments() != "" {
			reason += ": " + a.Comments()
		}
		return reason
	}
	return "rejected at approval"
}
