package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type placementFixture struct {
	uow       *MockUoW
	factory   *MockPlacementUoWFactory
	customers *MockCustomerRepository
	items     *MockItemRepository
	orders    *MockOrderRepository
	process   *MockProcess
	handler   commands.CreateOrderCommandHandler
}

func newPlacementFixture() *placementFixture {
	f := &placementFixture{
		uow:       new(MockUoW),
		factory:   new(MockPlacementUoWFactory),
		customers: new(MockCustomerRepository),
		items:     new(MockItemRepository),
		orders:    new(MockOrderRepository),
		process:   new(MockProcess),
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.handler = commands.NewCreateOrderCommandHandler(f.factory, f.process,
		services.NewCategoryRouter(), kernel.NewFixedClock(now), kernel.RandomIDGenerator{})
	return f
}

func (f *placementFixture) assertExpectations(t *testing.T) {
	f.uow.AssertExpectations(t)
	f.factory.AssertExpectations(t)
	f.customers.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.process.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ExistingCustomerByEmail(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()
	milk := mustItem(t, "Milk", catalog.Food, "1.50")
	buyer := mustCustomer(t, "ada@example.com")

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{Email: "ada@example.com"},
		[]commands.OrderLine{{ItemID: milk.ID(), Quantity: 5}},
		mustAddress(t), "CREDIT_CARD")
	require.NoError(t, err)

	var placed *order.Order
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("CustomerRepository").Return(f.customers).Once(),
		f.customers.On("FindByEmail", ctx, "ada@example.com").Return(buyer, nil).Once(),
		f.uow.On("ItemRepository").Return(f.items).Once(),
		f.items.On("Get", ctx, milk.ID()).Return(milk, nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Add", ctx, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { placed = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
		f.process.On("StartProcess", ctx, mock.AnythingOfType("kernel.UUID")).Return("pi-1", nil).Once(),
	)

	res, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	f.assertExpectations(t)

	require.NotNil(t, placed)
	assert.Equal(t, placed.ID(), res.OrderID)
	assert.Equal(t, placed.Number(), res.OrderNumber)
	assert.Equal(t, "pi-1", res.ProcessInstanceID)
	assert.Regexp(t, `^ORD-20250314093000-[0-9A-F]{6}$`, res.OrderNumber)
	assert.Equal(t, order.Pending, placed.Status())
	assert.Equal(t, "7.50", placed.Total().String())
	assert.Equal(t, buyer.ID(), placed.CustomerID())
	f.process.AssertNumberOfCalls(t, "StartProcess", 1)
}

func TestCreateOrderCommandHandler_Handle_CreatesCustomerOnEmailMiss(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()
	shirt := mustItem(t, "Shirt", catalog.Clothing, "20.00")

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{Email: "new@example.com", FirstName: "Grace", LastName: "Hopper"},
		[]commands.OrderLine{{ItemID: shirt.ID(), Quantity: 2}},
		mustAddress(t), "PAYPAL")
	require.NoError(t, err)

	var created *customer.Customer
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("CustomerRepository").Return(f.customers).Once(),
		f.customers.On("FindByEmail", ctx, "new@example.com").
			Return(nil, errs.NewObjectNotFoundError("customer", "new@example.com")).Once(),
		f.customers.On("Add", ctx, mock.AnythingOfType("*customer.Customer")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*customer.Customer) }).
			Return(nil).Once(),
		f.uow.On("ItemRepository").Return(f.items).Once(),
		f.items.On("Get", ctx, shirt.ID()).Return(shirt, nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
		f.process.On("StartProcess", ctx, mock.AnythingOfType("kernel.UUID")).Return("pi-2", nil).Once(),
	)

	_, err = f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	f.assertExpectations(t)

	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", created.Email())
	assert.Equal(t, "Grace Hopper", created.FullName())
}

func TestCreateOrderCommandHandler_Handle_UnknownCustomer(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()
	customerID := kernel.NewUUID()

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{ID: customerID},
		[]commands.OrderLine{{ItemID: kernel.NewUUID(), Quantity: 1}},
		mustAddress(t), "CARD")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("CustomerRepository").Return(f.customers).Once(),
		f.customers.On("Get", ctx, customerID).
			Return(nil, errs.NewObjectNotFoundError("customer", customerID.String())).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err = f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.assertExpectations(t)
	f.process.AssertNotCalled(t, "StartProcess", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_RejectsMixedCategories(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()
	buyer := mustCustomer(t, "ada@example.com")
	phone := mustItem(t, "Phone", catalog.Electronics, "499.00")
	bread := mustItem(t, "Bread", catalog.Food, "2.00")

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{ID: buyer.ID()},
		[]commands.OrderLine{{ItemID: phone.ID(), Quantity: 1}, {ItemID: bread.ID(), Quantity: 1}},
		mustAddress(t), "CARD")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("CustomerRepository").Return(f.customers).Once(),
		f.customers.On("Get", ctx, buyer.ID()).Return(buyer, nil).Once(),
		f.uow.On("ItemRepository").Return(f.items).Once(),
		f.items.On("Get", ctx, phone.ID()).Return(phone, nil).Once(),
		f.items.On("Get", ctx, bread.ID()).Return(bread, nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err = f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, services.ErrMixedCategories)
	f.assertExpectations(t)
	f.orders.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_ProcessStartFailureKeepsOrder(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()
	buyer := mustCustomer(t, "ada@example.com")
	phone := mustItem(t, "Phone", catalog.Electronics, "499.00")

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{ID: buyer.ID()},
		[]commands.OrderLine{{ItemID: phone.ID(), Quantity: 1}},
		mustAddress(t), "CARD")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("CustomerRepository").Return(f.customers).Once(),
		f.customers.On("Get", ctx, buyer.ID()).Return(buyer, nil).Once(),
		f.uow.On("ItemRepository").Return(f.items).Once(),
		f.items.On("Get", ctx, phone.ID()).Return(phone, nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
		f.process.On("StartProcess", ctx, mock.AnythingOfType("kernel.UUID")).
			Return("", errors.New("engine unavailable")).Once(),
	)

	res, err := f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrProcessNotStarted)
	assert.False(t, res.OrderID.IsZero())
	assert.Empty(t, res.ProcessInstanceID)
	f.assertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	f := newPlacementFixture()

	cmd, err := commands.NewCreateOrderCommand(
		commands.CustomerRef{Email: "ada@example.com"},
		[]commands.OrderLine{{ItemID: kernel.NewUUID(), Quantity: 1}},
		mustAddress(t), "CARD")
	require.NoError(t, err)

	f.uow.On("Begin", ctx).Return(errors.New("begin error")).Once()

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	f.assertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockPlacementUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, new(MockProcess),
		services.NewCategoryRouter(), kernel.SystemClock{}, kernel.RandomIDGenerator{})

	_, err := h.Handle(t.Context(), commands.CreateOrderCommand{})
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
