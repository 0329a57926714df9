package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the order with its lines (in placement order), approvals and
// shipment. A missing order is errs.ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	db := h.db.WithContext(ctx)

	where, key, arg := "o.id = ?", query.OrderID().String(), any(query.OrderID().Bytes())
	if query.ByNumber() {
		where, key, arg = "o.order_number = ?", query.Number(), query.Number()
	}

	var (
		view        OrderView
		id, custID  uuid.UUID
		email       sql.NullString
		completedAt sql.NullTime
	)
	row := db.Raw(`
		SELECT
			o.id,
			o.order_number,
			o.customer_id,
			c.email,
			o.status,
			o.total_amount,
			o.shipping_line1, o.shipping_line2, o.shipping_city,
			o.shipping_state, o.shipping_zip, o.shipping_country,
			o.payment_method,
			o.payment_reference,
			o.process_instance_id,
			o.notes,
			o.created_at,
			o.updated_at,
			o.completed_at
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE `+where, arg).Row()
	err := row.Scan(
		&id,
		&view.Number,
		&custID,
		&email,
		&view.Status,
		&view.TotalAmount,
		&view.ShippingAddress.Line1, &view.ShippingAddress.Line2, &view.ShippingAddress.City,
		&view.ShippingAddress.State, &view.ShippingAddress.Zip, &view.ShippingAddress.Country,
		&view.PaymentMethod,
		&view.PaymentReference,
		&view.ProcessInstanceID,
		&view.Notes,
		&view.CreatedAt,
		&view.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderView{}, errs.NewObjectNotFoundError("order", key)
		}
		return OrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderView{}, err
	}
	if view.CustomerID, err = kernel.UUIDFromBytes(custID[:]); err != nil {
		return OrderView{}, err
	}
	view.CustomerEmail = email.String
	if completedAt.Valid {
		view.CompletedAt = &completedAt.Time
	}

	if view.Items, err = h.items(ctx, id); err != nil {
		return OrderView{}, err
	}
	if view.Approvals, err = h.approvals(ctx, id); err != nil {
		return OrderView{}, err
	}
	if view.Shipment, err = h.shipment(ctx, id); err != nil {
		return OrderView{}, err
	}
	return view, nil
}

func (h GetOrderQueryHandler) items(ctx context.Context, orderID uuid.UUID) ([]OrderItemView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, item_id, item_name, category, requires_refrigeration,
			quantity, unit_price, reservation
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, orderID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItemView, 0)
	for rows.Next() {
		var (
			v          OrderItemView
			id, itemID uuid.UUID
		)
		if err = rows.Scan(&id, &itemID, &v.ItemName, &v.Category, &v.RequiresRefrigeration,
			&v.Quantity, &v.UnitPrice, &v.Reservation); err != nil {
			return nil, err
		}
		if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if v.ItemID, err = kernel.UUIDFromBytes(itemID[:]); err != nil {
			return nil, err
		}
		v.Subtotal = v.UnitPrice.Mul(decimal.NewFromInt(int64(v.Quantity)))
		items = append(items, v)
	}
	return items, rows.Err()
}

func (h GetOrderQueryHandler) approvals(ctx context.Context, orderID uuid.UUID) ([]ApprovalView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, task_id, approval_type, approved, comments, approver, decided_at
		FROM approvals
		WHERE order_id = ?
		ORDER BY decided_at, id
	`, orderID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]ApprovalView, 0)
	for rows.Next() {
		var (
			v  ApprovalView
			id uuid.UUID
		)
		if err = rows.Scan(&id, &v.TaskID, &v.ApprovalType, &v.Approved, &v.Comments,
			&v.Approver, &v.DecidedAt); err != nil {
			return nil, err
		}
		if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		approvals = append(approvals, v)
	}
	return approvals, rows.Err()
}

func (h GetOrderQueryHandler) shipment(ctx context.Context, orderID uuid.UUID) (*ShipmentView, error) {
	var (
		v  ShipmentView
		id uuid.UUID
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, tracking_number, carrier, method, estimated_delivery, shipped_at
		FROM shipments
		WHERE order_id = ?
	`, orderID).Row().Scan(&id, &v.TrackingNumber, &v.Carrier, &v.Method, &v.EstimatedDelivery, &v.ShippedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // an order without shipment is not an error
	}
	if err != nil {
		return nil, err
	}
	if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	return &v, nil
}
