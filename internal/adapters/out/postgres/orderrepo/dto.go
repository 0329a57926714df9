// Package orderrepo maps order aggregates, with their line items, approvals and
// shipment, to relational tables.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Children are saved through GORM associations.
type OrderDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNumber       string          `gorm:"type:varchar(40);not null;uniqueIndex:orders_order_number_key"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            string          `gorm:"type:varchar(30);not null;index"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Shipping          AddressDTO      `gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod     string          `gorm:"type:varchar(50);not null"`
	PaymentReference  string          `gorm:"type:varchar(100);not null;default:''"`
	ProcessInstanceID string          `gorm:"type:varchar(64);not null;default:''"`
	Notes             string          `gorm:"type:text;not null;default:''"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
	CompletedAt       *time.Time
	Version           int `gorm:"not null;default:0"`

	Items     []LineItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Approvals []ApprovalDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment  *ShipmentDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	Line1   string `gorm:"type:varchar(255);not null"`
	Line2   string `gorm:"type:varchar(255);not null;default:''"`
	City    string `gorm:"type:varchar(100);not null"`
	State   string `gorm:"type:varchar(100);not null;default:''"`
	Zip     string `gorm:"type:varchar(20);not null"`
	Country string `gorm:"type:varchar(100);not null"`
}

type LineItemDTO struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID                uuid.UUID       `gorm:"type:uuid;not null"`
	Position              int             `gorm:"not null"`
	ItemName              string          `gorm:"type:varchar(255);not null"`
	Category              string          `gorm:"type:varchar(50);not null"`
	RequiresRefrigeration bool            `gorm:"not null;default:false"`
	Quantity              int             `gorm:"not null"`
	UnitPrice             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Reservation           string          `gorm:"type:varchar(16);not null"`
}

func (LineItemDTO) TableName() string {
	return "order_items"
}

type ApprovalDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:approvals_order_task_key"`
	TaskID       string    `gorm:"type:varchar(64);not null;uniqueIndex:approvals_order_task_key"`
	ApprovalType string    `gorm:"type:varchar(100);not null"`
	Approved     bool      `gorm:"not null"`
	Comments     string    `gorm:"type:text;not null;default:''"`
	Approver     string    `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	DecidedAt    time.Time `gorm:"not null"`
}

func (ApprovalDTO) TableName() string {
	return "approvals"
}

type ShipmentDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:shipments_order_id_key"`
	TrackingNumber    string    `gorm:"type:varchar(64);not null;uniqueIndex:shipments_tracking_number_key"`
	Carrier           string    `gorm:"type:varchar(50);not null"`
	Method            string    `gorm:"type:varchar(50);not null;default:''"`
	EstimatedDelivery time.Time `gorm:"not null"`
	ShippedAt         time.Time `gorm:"not null"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()
	addr := o.ShippingAddress()

	dto := OrderDTO{
		ID:          id,
		OrderNumber: o.Number(),
		CustomerID:  o.CustomerID().Bytes(),
		Status:      o.Status().String(),
		TotalAmount: o.Total().Decimal(),
		Shipping: AddressDTO{
			Line1:   addr.Line1(),
			Line2:   addr.Line2(),
			City:    addr.City(),
			State:   addr.State(),
			Zip:     addr.Zip(),
			Country: addr.Country(),
		},
		PaymentMethod:     o.PaymentMethod(),
		PaymentReference:  o.PaymentReference(),
		ProcessInstanceID: o.ProcessInstanceID(),
		Notes:             o.Notes(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
		CompletedAt:       o.CompletedAt(),
		Version:           o.Version(),
	}

	for i, l := range o.Items() {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:                    l.ID().Bytes(),
			OrderID:               id,
			ItemID:                l.ItemID().Bytes(),
			Position:              i,
			ItemName:              l.ItemName(),
			Category:              l.Category().String(),
			RequiresRefrigeration: l.RequiresRefrigeration(),
			Quantity:              l.Quantity(),
			UnitPrice:             l.UnitPrice().Decimal(),
			Reservation:           string(l.Reservation()),
		})
	}

	for _, a := range o.Approvals() {
		dto.Approvals = append(dto.Approvals, ApprovalDTO{
			ID:           a.ID().Bytes(),
			OrderID:      id,
			TaskID:       a.TaskID(),
			ApprovalType: a.ApprovalType(),
			Approved:     a.Approved(),
			Comments:     a.Comments(),
			Approver:     a.Approver(),
			CreatedAt:    a.CreatedAt(),
			DecidedAt:    a.DecidedAt(),
		})
	}

	if s := o.Shipment(); s != nil {
		dto.Shipment = &ShipmentDTO{
			ID:                s.ID().Bytes(),
			OrderID:           id,
			TrackingNumber:    s.TrackingNumber(),
			Carrier:           s.Carrier(),
			Method:            s.Method(),
			EstimatedDelivery: s.EstimatedDelivery(),
			ShippedAt:         s.ShippedAt(),
		}
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	address, err := kernel.NewAddress(dto.Shipping.Line1, dto.Shipping.Line2, dto.Shipping.City,
		dto.Shipping.State, dto.Shipping.Zip, dto.Shipping.Country)
	if err != nil {
		return nil, err
	}

	items := make([]*order.LineItem, 0, len(dto.Items))
	for _, l := range dto.Items {
		line, lineErr := lineToDomain(l)
		if lineErr != nil {
			return nil, lineErr
		}
		items = append(items, line)
	}

	approvals := make([]*order.Approval, 0, len(dto.Approvals))
	for _, a := range dto.Approvals {
		approvalID, idErr := kernel.UUIDFromBytes(a.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		approval, approvalErr := order.RestoreApproval(approvalID, a.TaskID, a.ApprovalType, a.Approved,
			a.Comments, a.Approver, a.CreatedAt, a.DecidedAt)
		if approvalErr != nil {
			return nil, approvalErr
		}
		approvals = append(approvals, approval)
	}

	var shipment *order.Shipment
	if dto.Shipment != nil {
		shipmentID, idErr := kernel.UUIDFromBytes(dto.Shipment.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		shipment, err = order.NewShipment(shipmentID, dto.Shipment.TrackingNumber, dto.Shipment.Carrier,
			dto.Shipment.Method, dto.Shipment.EstimatedDelivery, dto.Shipment.ShippedAt)
		if err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                id,
		Number:            dto.OrderNumber,
		CustomerID:        customerID,
		Status:            status,
		ShippingAddress:   address,
		PaymentMethod:     dto.PaymentMethod,
		PaymentReference:  dto.PaymentReference,
		ProcessInstanceID: dto.ProcessInstanceID,
		Notes:             dto.Notes,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		CompletedAt:       dto.CompletedAt,
		Version:           dto.Version,
		Items:             items,
		Approvals:         approvals,
		Shipment:          shipment,
	})
}

func lineToDomain(l LineItemDTO) (*order.LineItem, error) {
	lineID, err := kernel.UUIDFromBytes(l.ID[:])
	if err != nil {
		return nil, err
	}
	itemID, err := kernel.UUIDFromBytes(l.ItemID[:])
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(l.UnitPrice)
	if err != nil {
		return nil, err
	}
	return order.RestoreLineItem(lineID, itemID, l.ItemName, catalog.Category(l.Category),
		l.RequiresRefrigeration, l.Quantity, price, order.ReservationState(l.Reservation))
}
