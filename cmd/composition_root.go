package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	api "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/dedup"
	"orderflow/internal/adapters/out/eventlog"
	"orderflow/internal/adapters/out/flowengine"
	"orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/payment"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/warehouse"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/application/workflow"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const tracerName = "orderflow/workflow"

type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	clock      kernel.Clock
	ids        kernel.IDGenerator
	uowFactory *postgres.GormUnitOfWorkFactory
	router     services.CategoryRouter
	engine     *flowengine.Engine
	bridge     *workflow.Bridge
	closers    []func() error
}

func NewCompositionRoot(
	configs Config,
	gormDB *gorm.DB,
	tracerProvider trace.TracerProvider,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	c := &CompositionRoot{
		configs: configs,
		gormDB:  gormDB,
		logger:  logger,
		clock:   kernel.SystemClock{},
		ids:     kernel.RandomIDGenerator{},
		router:  services.NewCategoryRouter(),
	}

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, c.newEventPublisher(), logger)

	gateway, err := c.newPaymentGateway()
	if err != nil {
		return nil, err
	}

	registry := c.newRegistry(gateway, tracerProvider.Tracer(tracerName))
	c.engine = flowengine.NewEngine(
		flowengine.NewGormStore(gormDB),
		flowengine.DefinitionsFromRoutes(c.router.Routes()),
		registry,
		c.clock,
		flowengine.WithLogger(logger),
	)
	c.bridge = workflow.NewBridge(c.engine, c.router, c.orderUoWFactory(), c.clock, logger)
	return c, nil
}

// Close releases the broker and cache connections opened by the root.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

func (c *CompositionRoot) newEventPublisher() ports.EventPublisher {
	if len(c.configs.KafkaBrokers) == 0 {
		return eventlog.NewPublisher(c.logger)
	}
	publisher := kafka.NewPublisher(
		kafka.NewWriter(c.configs.KafkaBrokers, c.configs.KafkaOrderEventsTopic),
		c.ids,
	)
	c.closers = append(c.closers, publisher.Close)
	return publisher
}

func (c *CompositionRoot) newDeduplicator() ports.CallbackDeduplicator {
	if c.configs.RedisAddr == "" {
		return dedup.NewMemory(c.clock)
	}
	client := redis.NewClient(&redis.Options{Addr: c.configs.RedisAddr})
	c.closers = append(c.closers, client.Close)
	return dedup.NewRedis(client)
}

func (c *CompositionRoot) newPaymentGateway() (ports.PaymentGateway, error) {
	opts := []payment.Option{
		payment.WithLatency(c.configs.PaymentLatency),
		payment.WithIDGenerator(c.ids),
	}
	if c.configs.PaymentDeclineAbove != "" {
		limit, err := kernel.MoneyFromString(c.configs.PaymentDeclineAbove)
		if err != nil {
			return nil, fmt.Errorf("PAYMENT_DECLINE_ABOVE: %w", err)
		}
		opts = append(opts, payment.WithDeclineAbove(limit))
	}
	return payment.NewSimulator(opts...), nil
}

func (c *CompositionRoot) newRegistry(gateway ports.PaymentGateway, tracer trace.Tracer) *workflow.Registry {
	retry := workflow.DefaultRetryPolicy()
	stock := c.orderInventoryUoWFactory()
	store := warehouse.NewSimulator(c.logger, warehouse.WithLatency(c.configs.FulfillmentLatency))

	return workflow.NewRegistry().
		Use(
			workflow.Trace(tracer),
			workflow.Deduplicate(c.newDeduplicator(), c.configs.CallbackClaimTTL, c.logger),
		).
		Register(workflow.AnyCategory, string(services.StepValidate),
			workflow.NewValidateHandler(stock, c.clock, c.logger)).
		Register(workflow.AnyCategory, string(services.StepPay),
			workflow.NewPayHandler(stock, gateway, retry, c.clock, c.logger)).
		Register(workflow.AnyCategory, string(services.StepFulfill),
			workflow.NewFulfillHandler(stock, store, retry, c.clock, c.logger)).
		Register(workflow.AnyCategory, string(services.StepShip),
			workflow.NewShipHandler(c.orderUoWFactory(), c.router, services.NewShippingPolicy(), c.clock, c.ids)).
		Register(workflow.AnyCategory, string(services.StepReject),
			workflow.NewRejectHandler(stock, c.clock, c.logger))
}

func (c *CompositionRoot) CreateCreateCustomerCommandHandler() commands.CreateCustomerCommandHandler {
	var f commands.CustomerUoWFactory = FuncCustomerUoWFactory(func() commands.CustomerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCustomerCommandHandler(f, c.clock, c.ids)
}

func (c *CompositionRoot) CreateCreateItemCommandHandler() commands.CreateItemCommandHandler {
	var f commands.CatalogUoWFactory = FuncCatalogUoWFactory(func() commands.CatalogUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateItemCommandHandler(f, c.ids)
}

func (c *CompositionRoot) CreateRestockInventoryCommandHandler() commands.RestockInventoryCommandHandler {
	var f commands.InventoryUoWFactory = FuncInventoryUoWFactory(func() commands.InventoryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRestockInventoryCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.PlacementUoWFactory = FuncPlacementUoWFactory(func() commands.PlacementUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.bridge, c.router, c.clock, c.ids)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderInventoryUoWFactory(), c.bridge, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.orderUoWFactory(),
		c.CreateCancelOrderCommandHandler(),
		c.clock,
	)
}

func (c *CompositionRoot) CreateRecordApprovalCommandHandler() commands.RecordApprovalCommandHandler {
	return commands.NewRecordApprovalCommandHandler(c.orderUoWFactory(), c.bridge, c.clock, c.ids)
}

func (c *CompositionRoot) CreateStartOrderProcessCommandHandler() commands.StartOrderProcessCommandHandler {
	return commands.NewStartOrderProcessCommandHandler(c.bridge)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLowStockQueryHandler() queries.GetLowStockQueryHandler {
	return queries.NewGetLowStockQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateCheckAvailabilityQueryHandler() queries.CheckAvailabilityQueryHandler {
	return queries.NewCheckAvailabilityQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCustomersQueryHandler() queries.ListCustomersQueryHandler {
	return queries.NewListCustomersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListInventoryQueryHandler() queries.ListInventoryQueryHandler {
	return queries.NewListInventoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersAwaitingProcessQueryHandler() queries.GetOrdersAwaitingProcessQueryHandler {
	return queries.NewGetOrdersAwaitingProcessQueryHandler(c.gormDB)
}

// HTTPHandlers collects the use cases served by the REST adapter.
func (c *CompositionRoot) HTTPHandlers() api.Handlers {
	createCustomer := c.CreateCreateCustomerCommandHandler()
	createItem := c.CreateCreateItemCommandHandler()
	createOrder := c.CreateCreateOrderCommandHandler()
	updateStatus := c.CreateUpdateOrderStatusCommandHandler()
	cancelOrder := c.CreateCancelOrderCommandHandler()
	recordApproval := c.CreateRecordApprovalCommandHandler()
	restock := c.CreateRestockInventoryCommandHandler()

	return api.Handlers{
		CreateCustomer:    &createCustomer,
		CreateItem:        &createItem,
		CreateOrder:       &createOrder,
		UpdateOrderStatus: &updateStatus,
		CancelOrder:       &cancelOrder,
		RecordApproval:    &recordApproval,
		RestockInventory:  &restock,

		GetOrder:          c.CreateGetOrderQueryHandler(),
		ListOrders:        c.CreateListOrdersQueryHandler(),
		GetLowStock:       c.CreateGetLowStockQueryHandler(),
		CheckAvailability: c.CreateCheckAvailabilityQueryHandler(),
		ListCustomers:     c.CreateListCustomersQueryHandler(),
		ListInventory:     c.CreateListInventoryQueryHandler(),
		Tasks:             c.bridge,
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	starter := c.CreateStartOrderProcessCommandHandler()
	return jobs.NewJobManager(
		jobs.NewProcessEngineJob(c.engine, c.logger),
		jobs.NewProcessStartReconciliationJob(
			c.CreateGetOrdersAwaitingProcessQueryHandler(),
			&starter,
			c.clock,
			c.logger,
		),
		jobs.NewLowStockReportJob(c.CreateGetLowStockQueryHandler(), c.logger),
	)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderInventoryUoWFactory() commands.OrderInventoryUoWFactory {
	return FuncOrderInventoryUoWFactory(func() commands.OrderInventoryUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOrderInventoryUoWFactory func() commands.OrderInventoryUoW

func (f FuncOrderInventoryUoWFactory) Create() commands.OrderInventoryUoW {
	return f()
}

type FuncPlacementUoWFactory func() commands.PlacementUoW

func (f FuncPlacementUoWFactory) Create() commands.PlacementUoW {
	return f()
}

type FuncCustomerUoWFactory func() commands.CustomerUoW

func (f FuncCustomerUoWFactory) Create() commands.CustomerUoW {
	return f()
}

type FuncCatalogUoWFactory func() commands.CatalogUoW

func (f FuncCatalogUoWFactory) Create() commands.CatalogUoW {
	return f()
}

type FuncInventoryUoWFactory func() commands.InventoryUoW

func (f FuncInventoryUoWFactory) Create() commands.InventoryUoW {
	return f()
}
