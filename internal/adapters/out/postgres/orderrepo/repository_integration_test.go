package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/itemrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker

	customer *customer.Customer
	tv       *catalog.Item
	cable    *catalog.Item
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	suite.Require().NoError(suite.pg.Truncate())

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.pg.DB, suite.tracker)

	var err error
	suite.customer, err = customer.NewCustomer(kernel.NewUUID(), "ada@example.com", "Ada", "Lovelace", now)
	suite.Require().NoError(err)
	suite.Require().NoError(customerrepo.NewGormCustomerRepository(suite.pg.DB).Add(ctx, suite.customer))

	suite.tv = suite.seedItem("TV-55", "499.99")
	suite.cable = suite.seedItem("HDMI-2", "12.50")
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_PersistsLinesInOrder() {
	ctx := context.Background()
	o := suite.newOrder()
	suite.tracker.On("TrackAggregate", o.ID(), o).Once()

	suite.Require().NoError(suite.repository.Add(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.Number(), got.Number())
	suite.Equal(order.Pending, got.Status())
	suite.Equal("1024.98", got.Total().String())
	suite.Equal("CARD", got.PaymentMethod())
	suite.Equal("Berlin", got.ShippingAddress().City())
	suite.Require().Len(got.Items(), 2)
	suite.Equal("Item TV-55", got.Items()[0].ItemName())
	suite.Equal(2, got.Items()[0].Quantity())
	suite.Equal("Item HDMI-2", got.Items()[1].ItemName())
	suite.Equal(catalog.Electronics, got.Items()[1].Category())
	suite.Equal(order.ReservationNone, got.Items()[1].Reservation())
	suite.Nil(got.Shipment())
	suite.Nil(got.CompletedAt())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateNumber_AlreadyExists() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	first := suite.newOrder()
	suite.Require().NoError(suite.repository.Add(ctx, first))

	line, err := order.NewLineItem(kernel.NewUUID(), suite.cable, 1)
	suite.Require().NoError(err)
	second, err := order.NewOrder(kernel.NewUUID(), first.Number(), suite.customer.ID(), suite.address(),
		"CARD", []*order.LineItem{line}, now)
	suite.Require().NoError(err)

	err = suite.repository.Add(ctx, second)

	var exists *errs.AlreadyExistsError
	suite.Require().ErrorAs(err, &exists)
	suite.Equal("order number", exists.ParamName)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_FullLifecycle() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	o := suite.newOrder()
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.AttachProcess("proc-1", now))
	suite.Require().NoError(o.StartValidation(now))
	for _, l := range o.Items() {
		suite.Require().NoError(o.MarkLineReserved(l.ID()))
	}
	suite.Require().NoError(o.StartPayment(now))
	suite.Require().NoError(o.CompletePayment("PAY-ABCDEF12", now))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	approval, err := order.NewApproval(kernel.NewUUID(), "task-1", "High Value Review", true, "ok", "alice", now)
	suite.Require().NoError(err)
	suite.Require().NoError(o.AddApproval(approval, now))
	suite.Require().NoError(o.StartFulfillment(now))
	for _, l := range o.Items() {
		suite.Require().NoError(o.MarkLineConsumed(l.ID()))
	}
	suite.Require().NoError(o.StartShipping(now))
	shipment, err := order.NewShipment(kernel.NewUUID(), "ELEC-ABCDEF1234", "FedEx", "SIGNATURE_INSURED",
		now.AddDate(0, 0, 3), now)
	suite.Require().NoError(err)
	suite.Require().NoError(o.Ship(shipment, now))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.GetByNumber(ctx, o.Number())
	suite.Require().NoError(err)
	suite.Equal(order.Shipped, got.Status())
	suite.Equal("proc-1", got.ProcessInstanceID())
	suite.Equal("PAY-ABCDEF12", got.PaymentReference())
	suite.Require().NotNil(got.CompletedAt())
	suite.True(now.Equal(*got.CompletedAt()))
	for _, l := range got.Items() {
		suite.Equal(order.ReservationConsumed, l.Reservation())
	}
	suite.Require().Len(got.Approvals(), 1)
	suite.Equal("task-1", got.Approvals()[0].TaskID())
	suite.True(got.Approvals()[0].Approved())
	suite.Require().NotNil(got.Shipment())
	suite.Equal("ELEC-ABCDEF1234", got.Shipment().TrackingNumber())
	suite.Equal("FedEx", got.Shipment().Carrier())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_Missing_NotFound() {
	err := suite.repository.Update(context.Background(), suite.newOrder())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_Missing_NotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetByNumber(ctx, "ORD-00000000000000-000000")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) seedItem(sku, price string) *catalog.Item {
	money, err := kernel.MoneyFromString(price)
	suite.Require().NoError(err)
	item, err := catalog.NewItem(kernel.NewUUID(), sku, "Item "+sku, catalog.Electronics, money)
	suite.Require().NoError(err)
	suite.Require().NoError(itemrepo.NewGormItemRepository(suite.pg.DB).Add(context.Background(), item))
	return item
}

func (suite *OrderRepositoryIntegrationTestSuite) address() kernel.Address {
	addr, err := kernel.NewAddress("Unter den Linden 1", "", "Berlin", "", "10117", "DE")
	suite.Require().NoError(err)
	return addr
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder() *order.Order {
	tvLine, err := order.NewLineItem(kernel.NewUUID(), suite.tv, 2)
	suite.Require().NoError(err)
	cableLine, err := order.NewLineItem(kernel.NewUUID(), suite.cable, 2)
	suite.Require().NoError(err)

	id := kernel.NewUUID()
	o, err := order.NewOrder(id, order.NewNumber(now, id), suite.customer.ID(), suite.address(),
		"CARD", []*order.LineItem{tvLine, cableLine}, now)
	suite.Require().NoError(err)
	return o
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
