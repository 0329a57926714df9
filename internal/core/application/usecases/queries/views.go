// Package queries holds the read side. Handlers query PostgreSQL directly and
// return read models shaped for the HTTP adapter and jobs; they never load
// aggregates.
package queries

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

type AddressView struct {
	Line1   string
	Line2   string
	City    string
	State   string
	Zip     string
	Country string
}

type OrderItemView struct {
	ID                    kernel.UUID
	ItemID                kernel.UUID
	ItemName              string
	Category              string
	RequiresRefrigeration bool
	Quantity              int
	UnitPrice             decimal.Decimal
	Subtotal              decimal.Decimal
	Reservation           string
}

type ApprovalView struct {
	ID           kernel.UUID
	TaskID       string
	ApprovalType string
	Approved     bool
	Comments     string
	Approver     string
	DecidedAt    time.Time
}

type ShipmentView struct {
	ID                kernel.UUID
	TrackingNumber    string
	Carrier           string
	Method            string
	EstimatedDelivery time.Time
	ShippedAt         time.Time
}

// OrderView is the full read model of one order.
type OrderView struct {
	ID                kernel.UUID
	Number            string
	CustomerID        kernel.UUID
	CustomerEmail     string
	Status            string
	TotalAmount       decimal.Decimal
	ShippingAddress   AddressView
	PaymentMethod     string
	PaymentReference  string
	ProcessInstanceID string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
	Items             []OrderItemView
	Approvals         []ApprovalView
	Shipment          *ShipmentView
}

// OrderSummary is a list row.
type OrderSummary struct {
	ID          kernel.UUID
	Number      string
	CustomerID  kernel.UUID
	Status      string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type LowStockView struct {
	ItemID            kernel.UUID
	SKU               string
	Name              string
	Available         int
	Reserved          int
	ReorderLevel      int
	ReorderQuantity   int
	WarehouseLocation string
}

type AvailabilityView struct {
	ItemID     kernel.UUID
	Requested  int
	Available  int
	Reserved   int
	Sufficient bool
}

type CustomerView struct {
	ID        kernel.UUID
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// InventoryView is one stock ledger row with its catalog identity.
type InventoryView struct {
	ItemID            kernel.UUID
	SKU               string
	Name              string
	Category          string
	Available         int
	Reserved          int
	ReorderLevel      int
	ReorderQuantity   int
	WarehouseLocation string
	LastRestockedAt   *time.Time
	LowStock          bool
}
