package http

import (
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
)

type CreateCustomerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type CreateItemRequest struct {
	SKU                   string `json:"sku"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Category              string `json:"category"`
	Price                 string `json:"price"`
	RequiresRefrigeration bool   `json:"requiresRefrigeration"`
	RequiresSignature     bool   `json:"requiresSignature"`
	InitialStock          int    `json:"initialStock"`
	WarehouseLocation     string `json:"warehouseLocation"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type OrderLineRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest identifies the customer by CustomerID or by email.
type CreateOrderRequest struct {
	CustomerID        string             `json:"customerId,omitempty"`
	CustomerEmail     string             `json:"customerEmail,omitempty"`
	CustomerFirstName string             `json:"customerFirstName,omitempty"`
	CustomerLastName  string             `json:"customerLastName,omitempty"`
	Items             []OrderLineRequest `json:"items"`
	ShippingAddress   Address            `json:"shippingAddress"`
	PaymentMethod     string             `json:"paymentMethod"`
}

type CreateOrderResponse struct {
	OrderID           string `json:"orderId"`
	OrderNumber       string `json:"orderNumber"`
	ProcessInstanceID string `json:"processInstanceId,omitempty"`
	Warning           string `json:"warning,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type CompleteTaskRequest struct {
	Approved bool   `json:"approved"`
	Comments string `json:"comments"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type OrderItem struct {
	ID                    string `json:"id"`
	ItemID                string `json:"itemId"`
	ItemName              string `json:"itemName"`
	Category              string `json:"category"`
	RequiresRefrigeration bool   `json:"requiresRefrigeration"`
	Quantity              int    `json:"quantity"`
	UnitPrice             string `json:"unitPrice"`
	Subtotal              string `json:"subtotal"`
	Reservation           string `json:"reservation"`
}

type Approval struct {
	TaskID       string    `json:"taskId"`
	ApprovalType string    `json:"approvalType"`
	Approved     bool      `json:"approved"`
	Comments     string    `json:"comments,omitempty"`
	Approver     string    `json:"approver"`
	DecidedAt    time.Time `json:"decidedAt"`
}

type Shipment struct {
	TrackingNumber    string    `json:"trackingNumber"`
	Carrier           string    `json:"carrier"`
	Method            string    `json:"method"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	ShippedAt         time.Time `json:"shippedAt"`
}

type Order struct {
	ID                string      `json:"id"`
	Number            string      `json:"orderNumber"`
	CustomerID        string      `json:"customerId"`
	CustomerEmail     string      `json:"customerEmail"`
	Status            string      `json:"status"`
	TotalAmount       string      `json:"totalAmount"`
	ShippingAddress   Address     `json:"shippingAddress"`
	PaymentMethod     string      `json:"paymentMethod"`
	PaymentReference  string      `json:"paymentReference,omitempty"`
	ProcessInstanceID string      `json:"processInstanceId,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
	Items             []OrderItem `json:"items"`
	Approvals         []Approval  `json:"approvals"`
	Shipment          *Shipment   `json:"shipment,omitempty"`
}

type OrderSummary struct {
	ID          string    `json:"id"`
	Number      string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Task struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ProcessInstanceID string    `json:"processInstanceId"`
	ProcessKey        string    `json:"processKey"`
	OrderID           string    `json:"orderId"`
	CandidateGroup    string    `json:"candidateGroup"`
	CreatedAt         time.Time `json:"createdAt"`
}

type LowStockItem struct {
	ItemID            string `json:"itemId"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Available         int    `json:"available"`
	Reserved          int    `json:"reserved"`
	ReorderLevel      int    `json:"reorderLevel"`
	ReorderQuantity   int    `json:"reorderQuantity"`
	WarehouseLocation string `json:"warehouseLocation,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type InventoryItem struct {
	ItemID            string     `json:"itemId"`
	SKU               string     `json:"sku"`
	Name              string     `json:"name"`
	Category          string     `json:"category"`
	Available         int        `json:"available"`
	Reserved          int        `json:"reserved"`
	ReorderLevel      int        `json:"reorderLevel"`
	ReorderQuantity   int        `json:"reorderQuantity"`
	WarehouseLocation string     `json:"warehouseLocation,omitempty"`
	LastRestockedAt   *time.Time `json:"lastRestockedAt,omitempty"`
	LowStock          bool       `json:"lowStock"`
}

type Availability struct {
	ItemID     string `json:"itemId"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
	Reserved   int    `json:"reserved"`
	Sufficient bool   `json:"sufficient"`
}

func toOrder(v queries.OrderView) Order {
	out := Order{
		ID:            v.ID.String(),
		Number:        v.Number,
		CustomerID:    v.CustomerID.String(),
		CustomerEmail: v.CustomerEmail,
		Status:        v.Status,
		TotalAmount:   v.TotalAmount.StringFixed(2),
		ShippingAddress: Address{
			Line1:   v.ShippingAddress.Line1,
			Line2:   v.ShippingAddress.Line2,
			City:    v.ShippingAddress.City,
			State:   v.ShippingAddress.State,
			Zip:     v.ShippingAddress.Zip,
			Country: v.ShippingAddress.Country,
		},
		PaymentMethod:     v.PaymentMethod,
		PaymentReference:  v.PaymentReference,
		ProcessInstanceID: v.ProcessInstanceID,
		Notes:             v.Notes,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		CompletedAt:       v.CompletedAt,
		Items:             make([]OrderItem, len(v.Items)),
		Approvals:         make([]Approval, len(v.Approvals)),
	}
	for i, it := range v.Items {
		out.Items[i] = OrderItem{
			ID:                    it.ID.String(),
			ItemID:                it.ItemID.String(),
			ItemName:              it.ItemName,
			Category:              it.Category,
			RequiresRefrigeration: it.RequiresRefrigeration,
			Quantity:              it.Quantity,
			UnitPrice:             it.UnitPrice.StringFixed(2),
			Subtotal:              it.Subtotal.StringFixed(2),
			Reservation:           it.Reservation,
		}
	}
	for i, a := range v.Approvals {
		out.Approvals[i] = Approval{
			TaskID:       a.TaskID,
			ApprovalType: a.ApprovalType,
			Approved:     a.Approved,
			Comments:     a.Comments,
			Approver:     a.Approver,
			DecidedAt:    a.DecidedAt,
		}
	}
	if s := v.Shipment; s != nil {
		out.Shipment = &Shipment{
			TrackingNumber:    s.TrackingNumber,
			Carrier:           s.Carrier,
			Method:            s.Method,
			EstimatedDelivery: s.EstimatedDelivery,
			ShippedAt:         s.ShippedAt,
		}
	}
	return out
}

func toOrderSummaries(rows []queries.OrderSummary) []OrderSummary {
	out := make([]OrderSummary, len(rows))
	for i, r := range rows {
		out[i] = OrderSummary{
			ID:          r.ID.String(),
			Number:      r.Number,
			CustomerID:  r.CustomerID.String(),
			Status:      r.Status,
			TotalAmount: r.TotalAmount.StringFixed(2),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return out
}

func toTasks(tasks []ports.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Task{
			ID:                t.ID,
			Name:              t.Name,
			ProcessInstanceID: t.ProcessInstanceID,
			ProcessKey:        t.ProcessKey,
			OrderID:           t.BusinessKey,
			CandidateGroup:    t.CandidateGroup,
			CreatedAt:         t.CreatedAt,
		}
	}
	return out
}

func toLowStock(rows []queries.LowStockView) []LowStockItem {
	out := make([]LowStockItem, len(rows))
	for i, r := range rows {
		out[i] = LowStockItem{
			ItemID:            r.ItemID.String(),
			SKU:               r.SKU,
			Name:              r.Name,
			Available:         r.Available,
			Reserved:          r.Reserved,
			ReorderLevel:      r.ReorderLevel,
			ReorderQuantity:   r.ReorderQuantity,
			WarehouseLocation: r.WarehouseLocation,
		}
	}
	return out
}

func toCustomers(rows []queries.CustomerView) []Customer {
	out := make([]Customer, len(rows))
	for i, r := range rows {
		out[i] = Customer{
			ID:        r.ID.String(),
			Email:     r.Email,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			CreatedAt: r.CreatedAt,
		}
	}
	return out
}

func toInventory(rows []queries.InventoryView) []InventoryItem {
	out := make([]InventoryItem, len(rows))
	for i, r := range rows {
		out[i] = InventoryItem{
			ItemID:            r.ItemID.String(),
			SKU:               r.SKU,
			Name:              r.Name,
			Category:          r.Category,
			Available:         r.Available,
			Reserved:          r.Reserved,
			ReorderLevel:      r.ReorderLevel,
			ReorderQuantity:   r.ReorderQuantity,
			WarehouseLocation: r.WarehouseLocation,
			LastRestockedAt:   r.LastRestockedAt,
			LowStock:          r.LowStock,
		}
	}
	return out
}
