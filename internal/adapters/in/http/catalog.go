package http

import (
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CreateCustomer handles POST /api/v1/customers.
func (s *Server) CreateCustomer(c echo.Context) error {
	var req CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	cmd, err := commands.NewCreateCustomerCommand(req.Email, req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, err)
	}
	id, err := s.h.CreateCustomer.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// CreateItem handles POST /api/v1/items - adds a catalog item with its initial stock.
func (s *Server) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	price, err := kernel.MoneyFromString(req.Price)
	if err != nil {
		return writeError(c, badRequest("price must be a non-negative decimal with at most two fractional digits"))
	}
	cmd, err := commands.NewCreateItemCommand(commands.NewItem{
		SKU:                   req.SKU,
		Name:                  req.Name,
		Description:           req.Description,
		Category:              req.Category,
		Price:                 price,
		RequiresRefrigeration: req.RequiresRefrigeration,
		RequiresSignature:     req.RequiresSignature,
		InitialStock:          req.InitialStock,
		WarehouseLocation:     req.WarehouseLocation,
	})
	if err != nil {
		return writeError(c, err)
	}
	id, err := s.h.CreateItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// ListCustomers handles GET /api/v1/customers.
func (s *Server) ListCustomers(c echo.Context) error {
	rows, err := s.h.ListCustomers.Handle(c.Request().Context(), queries.NewListCustomersQuery())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCustomers(rows))
}

// ListInventory handles GET /api/v1/inventory - the whole stock ledger.
func (s *Server) ListInventory(c echo.Context) error {
	rows, err := s.h.ListInventory.Handle(c.Request().Context(), queries.NewListInventoryQuery())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toInventory(rows))
}

// GetLowStock handles GET /api/v1/inventory/low-stock.
func (s *Server) GetLowStock(c echo.Context) error {
	rows, err := s.h.GetLowStock.Handle(c.Request().Context(), queries.NewGetLowStockQuery())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toLowStock(rows))
}

// CheckAvailability handles GET /api/v1/inventory/:itemId/availability?quantity=n.
func (s *Server) CheckAvailability(c echo.Context) error {
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return writeError(c, err)
	}
	quantity, err := queryInt(c, "quantity", 1)
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewCheckAvailabilityQuery(itemID, quantity)
	if err != nil {
		return writeError(c, err)
	}
	view, err := s.h.CheckAvailability.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Availability{
		ItemID:     view.ItemID.String(),
		Requested:  view.Requested,
		Available:  view.Available,
		Reserved:   view.Reserved,
		Sufficient: view.Sufficient,
	})
}

// RestockInventory handles POST /api/v1/inventory/:itemId/restock.
func (s *Server) RestockInventory(c echo.Context) error {
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return writeError(c, err)
	}
	var req RestockRequest
	if err = c.Bind(&req); err != nil {
		return writeError(c, badRequest("invalid request body"))
	}

	cmd, err := commands.NewRestockInventoryCommand(itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	if err = s.h.RestockInventory.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
