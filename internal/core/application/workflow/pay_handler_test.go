package workflow_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/workflow"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type payFixture struct {
	start   *MockUoW
	settle  *MockUoW
	orders  *MockOrderRepository
	ledger  *MockInventoryRepository
	gateway *MockPaymentGateway
	handler *workflow.PayHandler
}

func newPayFixture() *payFixture {
	f := &payFixture{
		start:   new(MockUoW),
		settle:  new(MockUoW),
		orders:  new(MockOrderRepository),
		ledger:  new(MockInventoryRepository),
		gateway: new(MockPaymentGateway),
	}
	factory := new(MockOrderInventoryUoWFactory)
	factory.On("Create").Return(f.start).Once()
	factory.On("Create").Return(f.settle).Once()
	f.handler = workflow.NewPayHandler(factory, f.gateway, fastRetry, kernel.NewFixedClock(now), discardLogger())
	return f
}

// expectStart covers the transaction that moves a validating order to payment processing.
func (f *payFixture) expectStart(t *testing.T, o *order.Order) {
	t.Helper()
	ctx := t.Context()
	f.start.On("Begin", ctx).Return(nil).Once()
	f.start.On("OrderRepository").Return(f.orders).Once()
	f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", ctx, o).Return(nil).Once()
	f.start.On("Commit", ctx).Return(nil).Once()
	f.start.On("Rollback", ctx).Return(nil).Once()
}

func (f *payFixture) expectSettle(t *testing.T, o *order.Order, withLedger bool) {
	t.Helper()
	ctx := t.Context()
	f.settle.On("Begin", ctx).Return(nil).Once()
	f.settle.On("OrderRepository").Return(f.orders).Once()
	f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
	if withLedger {
		f.settle.On("InventoryRepository").Return(f.ledger).Once()
	}
	f.orders.On("Update", ctx, o).Return(nil).Once()
	f.settle.On("Commit", ctx).Return(nil).Once()
	f.settle.On("Rollback", ctx).Return(nil).Once()
}

func TestPayHandler_ChargesAndCompletesPayment(t *testing.T) {
	tv := mustItem(t, "TV", catalog.Electronics, "499.99")
	o := restored(t, order.Validating, nil, line(t, tv, 2, order.ReservationReserved))
	exec := newExecution(o)

	f := newPayFixture()
	f.expectStart(t, o)
	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req ports.PaymentRequest) bool {
		return req.OrderID == o.ID() && req.Amount.String() == "999.98" && req.Method == "CREDIT_CARD"
	})).Return("PAY-1A2B3C4D", nil).Once()
	f.expectSettle(t, o, false)

	require.NoError(t, f.handler.Execute(t.Context(), exec))

	assert.Equal(t, order.PaymentCompleted, o.Status())
	assert.Equal(t, "PAY-1A2B3C4D", o.PaymentReference())
	assert.Equal(t, workflow.ResultSuccess, exec.vars[workflow.VarPaymentResult])
	assert.Equal(t, "PAY-1A2B3C4D", exec.vars[workflow.VarPaymentReference])
	f.start.AssertExpectations(t)
	f.settle.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestPayHandler_Decline_FailsPaymentAndReleasesStock(t *testing.T) {
	ctx := t.Context()
	tv := mustItem(t, "TV", catalog.Electronics, "4999.00")
	o := restored(t, order.Validating, nil, line(t, tv, 1, order.ReservationReserved))
	exec := newExecution(o)

	f := newPayFixture()
	f.expectStart(t, o)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return("", ports.ErrPaymentDeclined).Once()
	f.expectSettle(t, o, true)
	f.ledger.On("Release", ctx, tv.ID(), 1).Return(nil).Once()

	err := f.handler.Execute(ctx, exec)

	require.ErrorIs(t, err, workflow.ErrPaymentFailed)
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)
	require.ErrorIs(t, err, ports.ErrStepFailed)
	assert.Equal(t, order.PaymentFailed, o.Status())
	assert.Equal(t, order.ReservationReleased, o.Items()[0].Reservation())
	assert.Contains(t, o.Notes(), "Payment failed")
	assert.Equal(t, workflow.ResultFailed, exec.vars[workflow.VarPaymentResult])
	f.gateway.AssertNumberOfCalls(t, "Charge", 1)
	f.ledger.AssertExpectations(t)
}

func TestPayHandler_TransientGatewayError_IsRetried(t *testing.T) {
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.Validating, nil, line(t, shirt, 1, order.ReservationReserved))

	f := newPayFixture()
	f.expectStart(t, o)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return("", errors.New("503 service unavailable")).Once()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return("PAY-99887766", nil).Once()
	f.expectSettle(t, o, false)

	require.NoError(t, f.handler.Execute(t.Context(), newExecution(o)))
	assert.Equal(t, "PAY-99887766", o.PaymentReference())
	f.gateway.AssertNumberOfCalls(t, "Charge", 2)
}

func TestPayHandler_AlreadyPaid_IsNoOp(t *testing.T) {
	ctx := t.Context()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.Fulfilling, func(s *order.Snapshot) {
		s.PaymentReference = "PAY-00000001"
	}, line(t, shirt, 1, order.ReservationReserved))
	exec := newExecution(o)

	f := newPayFixture()
	f.start.On("Begin", ctx).Return(nil).Once()
	f.start.On("OrderRepository").Return(f.orders).Once()
	f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.start.On("Rollback", ctx).Return(nil).Once()

	require.NoError(t, f.handler.Execute(ctx, exec))
	assert.Equal(t, "PAY-00000001", exec.vars[workflow.VarPaymentReference])
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	f.start.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPayHandler_OrderCancelledDuringCharge(t *testing.T) {
	ctx := t.Context()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")
	o := restored(t, order.Validating, nil, line(t, shirt, 1, order.ReservationReserved))
	cancelled := restored(t, order.Cancelled, func(s *order.Snapshot) { s.ID = o.ID(); s.Number = o.Number() },
		line(t, shirt, 1, order.ReservationReleased))

	f := newPayFixture()
	f.expectStart(t, o)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return("PAY-ABCDEF12", nil).Once()
	f.settle.On("Begin", ctx).Return(nil).Once()
	f.settle.On("OrderRepository").Return(f.orders).Once()
	f.orders.On("Get", ctx, o.ID()).Return(cancelled, nil).Once()
	f.settle.On("Rollback", ctx).Return(nil).Once()

	err := f.handler.Execute(ctx, newExecution(o))
	require.ErrorIs(t, err, workflow.ErrOrderNotProcessable)
	f.settle.AssertNotCalled(t, "Commit", mock.Anything)
}
