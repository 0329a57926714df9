package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrProcessNotStarted is returned together with a valid result when the order
// was committed but the engine refused to start its process. The order stays
// PENDING without a process reference until reconciliation retries the start.
var ErrProcessNotStarted = errors.New("order process not started")

// CreateOrderResult identifies the placed order.
type CreateOrderResult struct {
	OrderID           kernel.UUID
	OrderNumber       string
	ProcessInstanceID string
}

// CreateOrderCommandHandler places orders and starts their lifecycle process.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, bridge, router, kernel.SystemClock{}, kernel.RandomIDGenerator{})
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrProcessNotStarted) {
//	    // res.OrderID is valid and the order will be picked up by reconciliation
//	}
type CreateOrderCommandHandler struct {
	uowFactory PlacementUoWFactory
	starter    ProcessStarter
	router     services.CategoryRouter
	clock      kernel.Clock
	ids        kernel.IDGenerator
}

func NewCreateOrderCommandHandler(
	uowFactory PlacementUoWFactory,
	starter ProcessStarter,
	router services.CategoryRouter,
	clock kernel.Clock,
	ids kernel.IDGenerator,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		starter:    starter,
		router:     router,
		clock:      clock,
		ids:        ids,
	}
}

// Handle persists the order in PENDING status in one transaction and then asks
// the starter for a process instance.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	o, err := h.place(ctx, cmd)
	if err != nil {
		return CreateOrderResult{}, err
	}

	res := CreateOrderResult{
		OrderID:     o.ID(),
		OrderNumber: o.Number(),
	}

	ref, err := h.starter.StartProcess(ctx, o.ID())
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrProcessNotStarted, err)
	}
	res.ProcessInstanceID = ref
	return res, nil
}

func (h *CreateOrderCommandHandler) place(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	buyer, err := h.resolveCustomer(ctx, uow.CustomerRepository(), cmd.Customer(), now)
	if err != nil {
		return nil, err
	}

	itemRepo := uow.ItemRepository()
	lines := make([]*order.LineItem, 0, len(cmd.Lines()))
	for _, requested := range cmd.Lines() {
		item, getErr := itemRepo.Get(ctx, requested.ItemID)
		if getErr != nil {
			return nil, getErr
		}
		line, lineErr := order.NewLineItem(h.ids.NewID(), item, requested.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	if err = h.router.CheckSingleCategory(lines); err != nil {
		return nil, err
	}
	if _, err = h.router.RouteFor(lines[0].Category()); err != nil {
		return nil, err
	}

	id := h.ids.NewID()
	o, err := order.NewOrder(id, order.NewNumber(now, id), buyer.ID(),
		cmd.ShippingAddress(), cmd.PaymentMethod(), lines, now)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// resolveCustomer loads the customer by ID, or by email creating it on a miss.
func (h *CreateOrderCommandHandler) resolveCustomer(
	ctx context.Context,
	repo ports.CustomerRepository,
	ref CustomerRef,
	now time.Time,
) (*customer.Customer, error) {
	if !ref.ID.IsZero() {
		return repo.Get(ctx, ref.ID)
	}

	existing, err := repo.FindByEmail(ctx, ref.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	created, err := customer.NewCustomer(h.ids.NewID(), ref.Email, ref.FirstName, ref.LastName, now)
	if err != nil {
		return nil, err
	}
	if err = repo.Add(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
