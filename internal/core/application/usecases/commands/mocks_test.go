package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) Add(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*customer.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if c := args.Get(0); c != nil {
		return c.(*customer.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockItemRepository struct{ mock.Mock }

func (m *MockItemRepository) Add(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Get(ctx context.Context, id kernel.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if item := args.Get(0); item != nil {
		return item.(*catalog.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) Add(ctx context.Context, inv *inventory.Inventory) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInventoryRepository) Get(ctx context.Context, itemID kernel.UUID) (*inventory.Inventory, error) {
	args := m.Called(ctx, itemID)
	if inv := args.Get(0); inv != nil {
		return inv.(*inventory.Inventory), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryRepository) CheckAvailability(ctx context.Context, itemID kernel.UUID, qty int) (bool, error) {
	args := m.Called(ctx, itemID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) Reserve(ctx context.Context, itemID kernel.UUID, qty int) error {
	return m.Called(ctx, itemID, qty).Error(0)
}

func (m *MockInventoryRepository) Release(ctx context.Context, itemID kernel.UUID, qty int) error {
	return m.Called(ctx, itemID, qty).Error(0)
}

func (m *MockInventoryRepository) Consume(ctx context.Context, itemID kernel.UUID, qty int) error {
	return m.Called(ctx, itemID, qty).Error(0)
}

func (m *MockInventoryRepository) Restock(ctx context.Context, itemID kernel.UUID, qty int, at time.Time) error {
	return m.Called(ctx, itemID, qty, at).Error(0)
}

// MockUoW satisfies every narrowed unit of work interface of the package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CustomerRepository() ports.CustomerRepository {
	return m.Called().Get(0).(ports.CustomerRepository)
}

func (m *MockUoW) ItemRepository() ports.ItemRepository {
	return m.Called().Get(0).(ports.ItemRepository)
}

func (m *MockUoW) InventoryRepository() ports.InventoryRepository {
	return m.Called().Get(0).(ports.InventoryRepository)
}

type MockPlacementUoWFactory struct{ mock.Mock }

func (m *MockPlacementUoWFactory) Create() commands.PlacementUoW {
	return m.Called().Get(0).(commands.PlacementUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockOrderInventoryUoWFactory struct{ mock.Mock }

func (m *MockOrderInventoryUoWFactory) Create() commands.OrderInventoryUoW {
	return m.Called().Get(0).(commands.OrderInventoryUoW)
}

type MockCustomerUoWFactory struct{ mock.Mock }

func (m *MockCustomerUoWFactory) Create() commands.CustomerUoW {
	return m.Called().Get(0).(commands.CustomerUoW)
}

type MockCatalogUoWFactory struct{ mock.Mock }

func (m *MockCatalogUoWFactory) Create() commands.CatalogUoW {
	return m.Called().Get(0).(commands.CatalogUoW)
}

type MockInventoryUoWFactory struct{ mock.Mock }

func (m *MockInventoryUoWFactory) Create() commands.InventoryUoW {
	return m.Called().Get(0).(commands.InventoryUoW)
}

type MockProcess struct{ mock.Mock }

func (m *MockProcess) StartProcess(ctx context.Context, orderID kernel.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockProcess) TerminateProcess(ctx context.Context, processInstanceID, reason string) error {
	return m.Called(ctx, processInstanceID, reason).Error(0)
}

func (m *MockProcess) GetTask(ctx context.Context, taskID string) (ports.Task, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(ports.Task), args.Error(1)
}

func (m *MockProcess) CompleteTask(ctx context.Context, taskID string, vars ports.Variables) error {
	return m.Called(ctx, taskID, vars).Error(0)
}

func mustMoney(t *testing.T, amount string) kernel.Money {
	t.Helper()
	m, err := kernel.MoneyFromString(amount)
	require.NoError(t, err)
	return m
}

func mustAddress(t *testing.T) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress("1 Dairy Lane", "", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	return a
}

func mustItem(t *testing.T, name string, category catalog.Category, price string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(kernel.NewUUID(), "SKU-"+name, name, category, mustMoney(t, price))
	require.NoError(t, err)
	return item
}

func mustCustomer(t *testing.T, email string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(kernel.NewUUID(), email, "Ada", "Lovelace", now)
	require.NoError(t, err)
	return c
}

// restoredOrder builds a persisted order in status with one line of item in
// the given reservation state.
func restoredOrder(
	t *testing.T,
	status order.Status,
	item *catalog.Item,
	qty int,
	reservation order.ReservationState,
	processID string,
) *order.Order {
	t.Helper()
	line, err := order.RestoreLineItem(kernel.NewUUID(), item.ID(), item.Name(), item.Category(),
		item.RequiresRefrigeration(), qty, item.Price(), reservation)
	require.NoError(t, err)

	id := kernel.NewUUID()
	o, err := order.RestoreOrder(order.Snapshot{
		ID:                id,
		Number:            order.NewNumber(now, id),
		CustomerID:        kernel.NewUUID(),
		Status:            status,
		ShippingAddress:   mustAddress(t),
		PaymentMethod:     "CREDIT_CARD",
		ProcessInstanceID: processID,
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             []*order.LineItem{line},
	})
	require.NoError(t, err)
	return o
}
