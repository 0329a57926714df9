package workflow

import (
	"context"
	"fmt"
	"strings"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

const trackingSuffixLen = 10

// ShipHandler hands the order to the carrier the shipping policy selects for
// its category and refrigeration needs.
type ShipHandler struct {
	uowFactory commands.OrderUoWFactory
	router     services.CategoryRouter
	policy     services.ShippingPolicy
	clock      kernel.Clock
	ids        kernel.IDGenerator
}

func NewShipHandler(
	uowFactory commands.OrderUoWFactory,
	router services.CategoryRouter,
	policy services.ShippingPolicy,
	clock kernel.Clock,
	ids kernel.IDGenerator,
) *ShipHandler {
	return &ShipHandler{
		uowFactory: uowFactory,
		router:     router,
		policy:     policy,
		clock:      clock,
		ids:        ids,
	}
}

func (h *ShipHandler) Execute(ctx context.Context, exec ports.Execution) error {
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

	//nolint:exhaustive // every other status is not processable
	switch o.Status() {
	case order.Shipped, order.Delivered:
		if s := o.Shipment(); s != nil {
			setShipped(exec, s)
			return nil
		}
		return fmt.Errorf("%w: order %s is %s without shipment", ErrOrderNotProcessable, o.Number(), o.Status())
	case order.Fulfilling, order.Shipping:
	default:
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotProcessable, o.Number(), o.Status())
	}

	category, err := h.router.PrimaryCategory(o.Items())
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrStepFailed, err)
	}
	rule := h.policy.RuleFor(category, requiresRefrigeration(exec, o))

	now := h.clock.Now()
	if err = o.StartShipping(now); err != nil {
		return err
	}

	id := h.ids.NewID()
	shipment, err := order.NewShipment(id, rule.TrackingNumber(trackingSuffix(id)),
		rule.Carrier, rule.Method, rule.EstimatedDelivery(now), now)
	if err != nil {
		return err
	}
	if err = o.Ship(shipment, now); err != nil {
		return err
	}
	if err = commitOrder(ctx, uow, orderRepo, o); err != nil {
		return err
	}

	setShipped(exec, shipment)
	return nil
}

func trackingSuffix(id kernel.UUID) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return hex[:trackingSuffixLen]
}

func setShipped(exec ports.Execution, s *order.Shipment) {
	exec.SetVariable(VarShippingResult, ResultSuccess)
	exec.SetVariable(VarTrackingNumber, s.TrackingNumber())
}
