package workflow_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/workflow"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newValidateHandler(factory *MockOrderInventoryUoWFactory) *workflow.ValidateHandler {
	return workflow.NewValidateHandler(factory, kernel.NewFixedClock(now), discardLogger())
}

func TestValidateHandler_NoStock_FailsValidation(t *testing.T) {
	ctx := t.Context()
	milk := mustItem(t, "Milk", catalog.Food, "1.50", catalog.RequiringRefrigeration())
	o := restored(t, order.Pending, nil, line(t, milk, 5, order.ReservationNone))
	exec := newExecution(o)

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	ledger := new(MockInventoryRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("InventoryRepository").Return(ledger).Once(),
		ledger.On("Reserve", ctx, milk.ID(), 5).Return(inventory.NewInsufficientStockError(milk.ID(), 5, 0)).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	err := newValidateHandler(factory).Execute(ctx, exec)

	require.ErrorIs(t, err, ports.ErrStepFailed)
	var failed *workflow.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, []string{"Milk"}, failed.Items)
	assert.Equal(t, o.Number(), failed.OrderNumber)

	assert.Equal(t, order.ValidationFailed, o.Status())
	assert.Contains(t, o.Notes(), "Insufficient inventory for item: Milk")
	assert.Equal(t, workflow.ResultFailed, exec.vars[workflow.VarValidationResult])
	uow.AssertExpectations(t)
	orders.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestValidateHandler_PartialStock_ReleasesWhatWasReserved(t *testing.T) {
	ctx := t.Context()
	tv := mustItem(t, "TV", catalog.Electronics, "499.99")
	cable := mustItem(t, "HDMI", catalog.Electronics, "12.50")
	o := restored(t, order.Pending, nil,
		line(t, tv, 1, order.ReservationNone),
		line(t, cable, 3, order.ReservationNone))

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	ledger := new(MockInventoryRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("InventoryRepository").Return(ledger).Once(),
		ledger.On("Reserve", ctx, tv.ID(), 1).Return(nil).Once(),
		ledger.On("Reserve", ctx, cable.ID(), 3).Return(inventory.NewInsufficientStockError(cable.ID(), 3, 2)).Once(),
		ledger.On("Release", ctx, tv.ID(), 1).Return(nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	err := newValidateHandler(factory).Execute(ctx, newExecution(o))

	var failed *workflow.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, []string{"HDMI"}, failed.Items)
	assert.Empty(t, o.LinesIn(order.ReservationReserved))
	ledger.AssertExpectations(t)
}

func TestValidateHandler_ReservesEveryLine(t *testing.T) {
	ctx := t.Context()
	milk := mustItem(t, "Milk", catalog.Food, "1.50", catalog.RequiringRefrigeration())
	o := restored(t, order.Pending, nil, line(t, milk, 5, order.ReservationNone))
	exec := newExecution(o)

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	ledger := new(MockInventoryRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("InventoryRepository").Return(ledger).Once(),
		ledger.On("Reserve", ctx, milk.ID(), 5).Return(nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	require.NoError(t, newValidateHandler(factory).Execute(ctx, exec))

	assert.Equal(t, order.Validating, o.Status())
	assert.Len(t, o.LinesIn(order.ReservationReserved), 1)
	assert.Equal(t, workflow.ResultPassed, exec.vars[workflow.VarValidationResult])
	assert.Equal(t, "7.50", exec.vars[workflow.VarTotalAmount])
	assert.Equal(t, true, exec.vars[workflow.VarRequiresRefrigeration])
	uow.AssertExpectations(t)
}

func TestValidateHandler_Redelivery_IsNoOp(t *testing.T) {
	ctx := t.Context()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.PaymentCompleted, nil, line(t, shirt, 1, order.ReservationReserved))
	exec := newExecution(o)

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	require.NoError(t, newValidateHandler(factory).Execute(ctx, exec))
	assert.Equal(t, workflow.ResultPassed, exec.vars[workflow.VarValidationResult])
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestValidateHandler_CancelledOrder_IsNotProcessable(t *testing.T) {
	ctx := t.Context()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.Cancelled, nil, line(t, shirt, 1, order.ReservationNone))

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orders).Once()
	orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	err := newValidateHandler(factory).Execute(ctx, newExecution(o))
	require.ErrorIs(t, err, workflow.ErrOrderNotProcessable)
	require.ErrorIs(t, err, ports.ErrStepFailed)
}

func TestValidateHandler_LedgerOutage_IsRetryable(t *testing.T) {
	ctx := t.Context()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.Pending, nil, line(t, shirt, 2, order.ReservationNone))

	uow := new(MockUoW)
	orders := new(MockOrderRepository)
	ledger := new(MockInventoryRepository)
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(uow).Once()

	outage := errors.New("connection reset by peer")
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("InventoryRepository").Return(ledger).Once(),
		ledger.On("Reserve", ctx, shirt.ID(), 2).Return(outage).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	err := newValidateHandler(factory).Execute(ctx, newExecution(o))
	require.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ports.ErrStepFailed)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestValidateHandler_MalformedOrderID_FailsStep(t *testing.T) {
	exec := &fakeExecution{id: "job-9", businessKey: "not-a-uuid", vars: ports.Variables{}}
	factory := new(MockOrderInventoryUoWFactory)

	err := newValidateHandler(factory).Execute(t.Context(), exec)
	require.ErrorIs(t, err, ports.ErrStepFailed)
	factory.AssertNotCalled(t, "Create")
}
