package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/workflow"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

var fastRetry = workflow.RetryPolicy{
	AttemptTimeout: time.Second,
	MaxRetries:     2,
	InitialDelay:   time.Millisecond,
	MaxDelay:       time.Millisecond,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) InventoryRepository() ports.InventoryRepository {
	return m.Called().Get(0).(ports.InventoryRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockOrderInventoryUoWFactory struct{ mock.Mock }

func (m *MockOrderInventoryUoWFactory) Create() commands.OrderInventoryUoW {
	return m.Called().Get(0).(commands.OrderInventoryUoW)
}

type MockProcessEngine struct{ mock.Mock }

func (m *MockProcessEngine) StartInstance(
	ctx context.Context, processKey, businessKey string, vars ports.Variables,
) (string, error) {
	args := m.Called(ctx, processKey, businessKey, vars)
	return args.String(0), args.Error(1)
}

func (m *MockProcessEngine) GetInstance(ctx context.Context, instanceID string) (ports.ProcessInstance, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).(ports.ProcessInstance), args.Error(1)
}

func (m *MockProcessEngine) QueryTasks(ctx context.Context, q ports.TaskQuery) ([]ports.Task, error) {
	args := m.Called(ctx, q)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]ports.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProcessEngine) GetTask(ctx context.Context, taskID string) (ports.Task, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(ports.Task), args.Error(1)
}

func (m *MockProcessEngine) CompleteTask(ctx context.Context, taskID string, vars ports.Variables) error {
	return m.Called(ctx, taskID, vars).Error(0)
}

func (m *MockProcessEngine) TerminateInstance(ctx context.Context, instanceID, reason string) error {
	return m.Called(ctx, instanceID, reason).Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Charge(ctx context.Context, req ports.PaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockWarehouse struct{ mock.Mock }

func (m *MockWarehouse) PickAndPack(ctx context.Context, req ports.PickRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockDeduplicator struct{ mock.Mock }

func (m *MockDeduplicator) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduplicator) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// fakeExecution is the engine side of a callback.
type fakeExecution struct {
	id          string
	instanceID  string
	businessKey string
	vars        ports.Variables
}

func newExecution(o *order.Order) *fakeExecution {
	return &fakeExecution{
		id:          "job-1",
		instanceID:  o.ProcessInstanceID(),
		businessKey: o.ID().String(),
		vars:        ports.Variables{workflow.VarOrderID: o.ID().String()},
	}
}

func (x *fakeExecution) ID() string                { return x.id }
func (x *fakeExecution) ProcessInstanceID() string { return x.instanceID }
func (x *fakeExecution) BusinessKey() string       { return x.businessKey }

func (x *fakeExecution) Variable(name string) (any, bool) {
	v, ok := x.vars[name]
	return v, ok
}

func (x *fakeExecution) SetVariable(name string, value any) {
	x.vars[name] = value
}

type fixedIDs struct{ id kernel.UUID }

func (f fixedIDs) NewID() kernel.UUID { return f.id }

func mustUUID(t *testing.T, s string) kernel.UUID {
	t.Helper()
	id, err := kernel.UUIDFromString(s)
	require.NoError(t, err)
	return id
}

func mustItem(t *testing.T, name string, category catalog.Category, price string, opts ...catalog.ItemOption) *catalog.Item {
	t.Helper()
	amount, err := kernel.MoneyFromString(price)
	require.NoError(t, err)
	item, err := catalog.NewItem(kernel.NewUUID(), "SKU-"+name, name, category, amount, opts...)
	require.NoError(t, err)
	return item
}

func line(t *testing.T, item *catalog.Item, qty int, reservation order.ReservationState) *order.LineItem {
	t.Helper()
	l, err := order.RestoreLineItem(kernel.NewUUID(), item.ID(), item.Name(), item.Category(),
		item.RequiresRefrigeration(), qty, item.Price(), reservation)
	require.NoError(t, err)
	return l
}

// restored builds a persisted order in status. Mutate the snapshot to add a
// payment reference, approvals or a shipment.
func restored(t *testing.T, status order.Status, mutate func(*order.Snapshot), lines ...*order.LineItem) *order.Order {
	t.Helper()
	address, err := kernel.NewAddress("1 Dairy Lane", "", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	buyer, err := customer.NewCustomer(kernel.NewUUID(), "ada@example.com", "Ada", "Lovelace", now)
	require.NoError(t, err)

	id := kernel.NewUUID()
	s := order.Snapshot{
		ID:                id,
		Number:            order.NewNumber(now, id),
		CustomerID:        buyer.ID(),
		Status:            status,
		ShippingAddress:   address,
		PaymentMethod:     "CREDIT_CARD",
		ProcessInstanceID: "pi-1",
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             lines,
	}
	if mutate != nil {
		mutate(&s)
	}
	o, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}
