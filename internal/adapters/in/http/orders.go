package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders - places an order and starts its process.
// An order whose process could not be started is still accepted.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	cmd, err := newCreateOrderCommand(req)
	if err != nil {
		return writeError(c, err)
	}

	res, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil && !errors.Is(err, commands.ErrProcessNotStarted) {
		return writeError(c, err)
	}

	resp := CreateOrderResponse{
		OrderID:           res.OrderID.String(),
		OrderNumber:       res.OrderNumber,
		ProcessInstanceID: res.ProcessInstanceID,
	}
	if err != nil {
		c.Logger().Warn(err)
		resp.Warning = "order accepted, processing will start shortly"
		return c.JSON(http.StatusAccepted, resp)
	}
	return c.JSON(http.StatusCreated, resp)
}

func newCreateOrderCommand(req CreateOrderRequest) (commands.CreateOrderCommand, error) {
	ref := commands.CustomerRef{
		Email:     req.CustomerEmail,
		FirstName: req.CustomerFirstName,
		LastName:  req.CustomerLastName,
	}
	if req.CustomerID != "" {
		id, err := kernel.UUIDFromString(req.CustomerID)
		if err != nil {
			return commands.CreateOrderCommand{}, badRequest("customerId must be a UUID")
		}
		ref.ID = id
	}

	lines := make([]commands.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := kernel.UUIDFromString(it.ItemID)
		if err != nil {
			return commands.CreateOrderCommand{}, badRequest("itemId must be a UUID")
		}
		lines = append(lines, commands.OrderLine{ItemID: id, Quantity: it.Quantity})
	}

	a := req.ShippingAddress
	address, err := kernel.NewAddress(a.Line1, a.Line2, a.City, a.State, a.Zip, a.Country)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(ref, lines, address, req.PaymentMethod)
}

// ListOrders handles GET /api/v1/orders?status=&customerId=&limit=&offset=.
func (s *Server) ListOrders(c echo.Context) error {
	filter := queries.ListOrdersFilter{
		Status:     c.QueryParam("status"),
		CustomerID: c.QueryParam("customerId"),
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return writeError(c, err)
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewListOrdersQuery(filter)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderSummaries(rows))
}

// GetOrder handles GET /api/v1/orders/:id - the id may also be an order number.
func (s *Server) GetOrder(c echo.Context) error {
	var (
		query queries.GetOrderQuery
		err   error
	)
	if id, parseErr := kernel.UUIDFromString(c.Param("id")); parseErr == nil {
		query, err = queries.NewGetOrderQuery(id)
	} else {
		query, err = queries.NewGetOrderByNumberQuery(c.Param("id"))
	}
	if err != nil {
		return writeError(c, err)
	}

	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrder(view))
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - administrative status override.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req UpdateOrderStatusRequest
	if err = c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return writeError(c, err)
	}
	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, status)
	if err != nil {
		return writeError(c, err)
	}
	if err = s.h.UpdateOrderStatus.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req CancelOrderRequest
	if c.Request().ContentLength > 0 {
		if err = c.Bind(&req); err != nil {
			return writeError(c, badRequest("invalid request body"))
		}
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	if err = s.h.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
