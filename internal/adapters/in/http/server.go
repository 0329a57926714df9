package http

import (
	"context"
	"fmt"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// UserHeader carries the name of the person acting on an approval task.
const UserHeader = "X-User"

// Use cases as seen from the HTTP adapter.
type (
	CreateCustomerHandler interface {
		Handle(ctx context.Context, cmd commands.CreateCustomerCommand) (kernel.UUID, error)
	}
	CreateItemHandler interface {
		Handle(ctx context.Context, cmd commands.CreateItemCommand) (kernel.UUID, error)
	}
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
	}
	UpdateOrderStatusHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateOrderStatusCommand) error
	}
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
	}
	RecordApprovalHandler interface {
		Handle(ctx context.Context, cmd commands.RecordApprovalCommand) error
	}
	RestockInventoryHandler interface {
		Handle(ctx context.Context, cmd commands.RestockInventoryCommand) error
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}
	ListOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.OrderSummary, error)
	}
	GetLowStockHandler interface {
		Handle(ctx context.Context, query queries.GetLowStockQuery) ([]queries.LowStockView, error)
	}
	CheckAvailabilityHandler interface {
		Handle(ctx context.Context, query queries.CheckAvailabilityQuery) (queries.AvailabilityView, error)
	}
	ListCustomersHandler interface {
		Handle(ctx context.Context, query queries.ListCustomersQuery) ([]queries.CustomerView, error)
	}
	ListInventoryHandler interface {
		Handle(ctx context.Context, query queries.ListInventoryQuery) ([]queries.InventoryView, error)
	}
	// TaskLister is implemented by the workflow bridge.
	TaskLister interface {
		ActiveTasksFor(ctx context.Context, orderID kernel.UUID) ([]ports.Task, error)
		PendingApprovalTasks(ctx context.Context) ([]ports.Task, error)
	}
)

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	// Command handlers
	CreateCustomer    CreateCustomerHandler
	CreateItem        CreateItemHandler
	CreateOrder       CreateOrderHandler
	UpdateOrderStatus UpdateOrderStatusHandler
	CancelOrder       CancelOrderHandler
	RecordApproval    RecordApprovalHandler
	RestockInventory  RestockInventoryHandler

	// Query handlers
	GetOrder          GetOrderHandler
	ListOrders        ListOrdersHandler
	GetLowStock       GetLowStockHandler
	CheckAvailability CheckAvailabilityHandler
	ListCustomers     ListCustomersHandler
	ListInventory     ListInventoryHandler
	Tasks             TaskLister
}

// Server maps the JSON API onto the application use cases.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// Register mounts every route on e. Requests under /api/v1 are checked against
// the embedded OpenAPI description before they reach a handler.
func (s *Server) Register(e *echo.Echo) error {
	doc, err := LoadOpenAPI()
	if err != nil {
		return err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return err
	}

	e.GET("/health", s.Health)
	registerDocs(e)

	v1 := e.Group("/api/v1", validate)
	v1.GET("/customers", s.ListCustomers)
	v1.POST("/customers", s.CreateCustomer)
	v1.POST("/items", s.CreateItem)

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders", s.ListOrders)
	v1.GET("/orders/:id", s.GetOrder)
	v1.PUT("/orders/:id/status", s.UpdateOrderStatus)
	v1.POST("/orders/:id/cancel", s.CancelOrder)
	v1.GET("/orders/:id/tasks", s.GetOrderTasks)
	v1.POST("/orders/:id/tasks/:taskId/complete", s.CompleteTask)

	v1.GET("/tasks/approvals", s.GetPendingApprovals)

	v1.GET("/inventory", s.ListInventory)
	v1.GET("/inventory/low-stock", s.GetLowStock)
	v1.GET("/inventory/:itemId/availability", s.CheckAvailability)
	v1.POST("/inventory/:itemId/restock", s.RestockInventory)
	return nil
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, badRequest(name + " must be a UUID")
	}
	return kernel.UUIDFromBytes(id[:])
}

// queryInt binds an optional integer query parameter, returning fallback when absent.
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	var n *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &n); err != nil {
		return 0, badRequest(fmt.Sprintf("%s must be an integer", name))
	}
	if n == nil {
		return fallback, nil
	}
	return *n, nil
}
