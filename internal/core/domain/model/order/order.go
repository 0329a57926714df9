package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrNoItems is returned when an operation needs the order's category but the order has no lines.
	ErrNoItems = errors.New("order has no line items")

	// ErrLineItemNotFound is returned when a line ID does not belong to the order.
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrProcessAlreadyAttached is returned when a different process instance is attached twice.
	ErrProcessAlreadyAttached = errors.New("order already has a process instance")
)

// Order is the aggregate root of a customer order. It owns its line items,
// approvals and shipment, and drives the lifecycle status machine.
//
// Order follows these invariants:
//   - total always equals the sum of line item subtotals
//   - status changes follow Status.TransitionTo, except OverrideStatus
//   - no change is accepted once the status is terminal
//   - completedAt is set when the order is shipped, delivered or cancelled
//
// Every status change records a StatusChanged domain event.
type Order struct {
	id                kernel.UUID
	number            string
	customerID        kernel.UUID
	status            Status
	total             kernel.Money
	shippingAddress   kernel.Address
	paymentMethod     string
	paymentReference  string
	processInstanceID string
	notes             string
	createdAt         time.Time
	updatedAt         time.Time
	completedAt       *time.Time
	version           int

	items     []*LineItem
	approvals []*Approval
	shipment  *Shipment

	events []kernel.DomainEvent

	isConstructed bool
}

// NewOrder places an order in Pending status. The total is computed from the lines.
//
// Example:
//
//	line, _ := order.NewLineItem(kernel.NewUUID(), milk, 5)
//	o, err := order.NewOrder(kernel.NewUUID(), "ORD-20250101120000-1A2B3C", customerID,
//	    address, "CARD", []*order.LineItem{line}, clock.Now())
func NewOrder(
	id kernel.UUID,
	number string,
	customerID kernel.UUID,
	shippingAddress kernel.Address,
	paymentMethod string,
	items []*LineItem,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		paymentMethod: strings.TrimSpace(paymentMethod),
		createdAt:     createdAt,
		updatedAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setCustomerID(customerID),
		o.setShippingAddress(shippingAddress),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot carries the persisted state of an order for RestoreOrder.
type Snapshot struct {
	ID                kernel.UUID
	Number            string
	CustomerID        kernel.UUID
	Status            Status
	ShippingAddress   kernel.Address
	PaymentMethod     string
	PaymentReference  string
	ProcessInstanceID string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
	Version           int
	Items             []*LineItem
	Approvals         []*Approval
	Shipment          *Shipment
}

// RestoreOrder rebuilds an order from persistence. No events are recorded.
func RestoreOrder(s Snapshot) (*Order, error) {
	o, err := NewOrder(s.ID, s.Number, s.CustomerID, s.ShippingAddress, s.PaymentMethod, s.Items, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err = s.Status.Validate(); err != nil {
		return nil, err
	}

	for _, a := range s.Approvals {
		if err = a.Validate(); err != nil {
			return nil, err
		}
	}
	if s.Shipment != nil {
		if err = s.Shipment.Validate(); err != nil {
			return nil, err
		}
	}

	o.status = s.Status
	o.paymentReference = s.PaymentReference
	o.processInstanceID = s.ProcessInstanceID
	o.notes = s.Notes
	o.updatedAt = s.UpdatedAt
	o.completedAt = s.CompletedAt
	o.version = s.Version
	o.approvals = append([]*Approval(nil), s.Approvals...)
	o.shipment = s.Shipment
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Total() kernel.Money {
	return o.total
}

func (o *Order) ShippingAddress() kernel.Address {
	return o.shippingAddress
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) PaymentReference() string {
	return o.paymentReference
}

// ProcessInstanceID is the engine reference, empty until the process has started.
func (o *Order) ProcessInstanceID() string {
	return o.processInstanceID
}

func (o *Order) Notes() string {
	return o.notes
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) CompletedAt() *time.Time {
	return o.completedAt
}

// Version is the persisted revision the order was loaded at. Saving an order
// whose row moved past this revision fails with errs.VersionIsInvalidError.
func (o *Order) Version() int {
	return o.version
}

// IncrementVersion records that the order was written at the next revision.
// Repositories call it after a successful update.
func (o *Order) IncrementVersion() {
	o.version++
}

// Items returns a copy of the line slice; the lines themselves are shared.
func (o *Order) Items() []*LineItem {
	return append([]*LineItem(nil), o.items...)
}

func (o *Order) Approvals() []*Approval {
	return append([]*Approval(nil), o.approvals...)
}

func (o *Order) Shipment() *Shipment {
	return o.shipment
}

// Categories returns the distinct categories of the lines, in line order.
func (o *Order) Categories() []catalog.Category {
	seen := make(map[catalog.Category]bool, len(o.items))
	categories := make([]catalog.Category, 0, 1)
	for _, l := range o.items {
		if !seen[l.category] {
			seen[l.category] = true
			categories = append(categories, l.category)
		}
	}
	return categories
}

// RequiresRefrigeration reports whether any line is perishable.
func (o *Order) RequiresRefrigeration() bool {
	for _, l := range o.items {
		if l.requiresRefrigeration {
			return true
		}
	}
	return false
}

// LinesIn returns the lines currently in the given reservation state.
func (o *Order) LinesIn(state ReservationState) []*LineItem {
	lines := make([]*LineItem, 0, len(o.items))
	for _, l := range o.items {
		if l.reservation == state {
			lines = append(lines, l)
		}
	}
	return lines
}

// DomainEvents returns the events recorded since the last ClearDomainEvents.
func (o *Order) DomainEvents() []kernel.DomainEvent {
	return append([]kernel.DomainEvent(nil), o.events...)
}

func (o *Order) ClearDomainEvents() {
	o.events = nil
}

// AttachProcess stores the engine reference. Attaching the same reference again is a no-op.
func (o *Order) AttachProcess(processInstanceID string, at time.Time) error {
	processInstanceID = strings.TrimSpace(processInstanceID)
	if processInstanceID == "" {
		return errs.NewValueIsRequiredError("process instance id")
	}
	if o.processInstanceID == processInstanceID {
		return nil
	}
	if o.processInstanceID != "" {
		return fmt.Errorf("%w: %s", ErrProcessAlreadyAttached, o.processInstanceID)
	}
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderIsTerminal, o.status)
	}
	o.processInstanceID = processInstanceID
	o.updatedAt = at
	return nil
}

// StartValidation moves a pending order to Validating. It is a no-op when the
// order is already validating so that redelivered callbacks are harmless.
func (o *Order) StartValidation(at time.Time) error {
	if o.status == Validating {
		return nil
	}
	return o.transition(Validating, "", at)
}

// MarkLineReserved records that the line's quantity was reserved in the ledger.
func (o *Order) MarkLineReserved(lineID kernel.UUID) error {
	return o.markLine(lineID, ReservationNone, ReservationReserved)
}

// MarkLineReleased records that the line's reservation was returned to available stock.
func (o *Order) MarkLineReleased(lineID kernel.UUID) error {
	return o.markLine(lineID, ReservationReserved, ReservationReleased)
}

// MarkLineConsumed records that the line's reserved units were picked.
func (o *Order) MarkLineConsumed(lineID kernel.UUID) error {
	return o.markLine(lineID, ReservationReserved, ReservationConsumed)
}

// FailValidation ends the lifecycle and lists every item that could not be reserved in the notes.
func (o *Order) FailValidation(unavailableItems []string, at time.Time) error {
	var b strings.Builder
	for _, name := range unavailableItems {
		fmt.Fprintf(&b, "Insufficient inventory for item: %s. ", name)
	}
	reason := strings.TrimSpace(b.String())
	if err := o.transition(ValidationFailed, reason, at); err != nil {
		return err
	}
	o.appendNote(b.String())
	return nil
}

// StartPayment moves a validated order to PaymentProcessing. Calling it again
// while payment is in flight is a no-op, so a redelivered pay callback can
// resume without failing the transition.
//
// Example:
//
//	if err := o.StartPayment(now); err != nil {
//	    return err // ErrInvalidTransition unless the order is ValidationPassed
//	}
//	ref, err := gateway.Charge(ctx, ports.PaymentRequest{OrderID: o.ID(), Amount: o.Total()})
func (o *Order) StartPayment(at time.Time) error {
	if o.status == PaymentProcessing {
		return nil
	}
	return o.transition(PaymentProcessing, "", at)
}

// CompletePayment stores the provider reference and moves to PaymentCompleted.
func (o *Order) CompletePayment(reference string, at time.Time) error {
	if strings.TrimSpace(reference) == "" {
		return errs.NewValueIsRequiredError("payment reference")
	}
	if err := o.transition(PaymentCompleted, "", at); err != nil {
		return err
	}
	o.paymentReference = reference
	return nil
}

// FailPayment ends the lifecycle in PaymentFailed and appends the gateway's
// reason to the notes. Reserved lines stay reserved until the reject step
// releases them.
//
// Example:
//
//	if errors.Is(chargeErr, ports.ErrPaymentDeclined) {
//	    if err := o.FailPayment(chargeErr.Error(), now); err != nil {
//	        return err
//	    }
//	}
func (o *Order) FailPayment(reason string, at time.Time) error {
	if err := o.transition(PaymentFailed, reason, at); err != nil {
		return err
	}
	o.appendNote("Payment failed: " + reason + ". ")
	return nil
}

// StartFulfillment moves a paid order to Fulfilling; repeating it is a no-op.
// Lines are consumed one by one afterwards with MarkLineConsumed.
//
// Example:
//
//	if err := o.StartFulfillment(now); err != nil {
//	    return err
//	}
//	for _, l := range o.LinesIn(order.ReservationReserved) {
//	    // consume the units in the ledger, then
//	    _ = o.MarkLineConsumed(l.ID())
//	}
func (o *Order) StartFulfillment(at time.Time) error {
	if o.status == Fulfilling {
		return nil
	}
	return o.transition(Fulfilling, "", at)
}

// FailFulfillment ends the lifecycle in FulfillmentFailed with the warehouse
// reason in the notes.
func (o *Order) FailFulfillment(reason string, at time.Time) error {
	if err := o.transition(FulfillmentFailed, reason, at); err != nil {
		return err
	}
	o.appendNote("Fulfillment failed: " + reason + ". ")
	return nil
}

// StartShipping moves a fulfilled order to Shipping; repeating it is a no-op.
func (o *Order) StartShipping(at time.Time) error {
	if o.status == Shipping {
		return nil
	}
	return o.transition(Shipping, "", at)
}

// Ship attaches the shipment and moves to Shipped, stamping completedAt.
func (o *Order) Ship(shipment *Shipment, at time.Time) error {
	if err := shipment.Validate(); err != nil {
		return err
	}
	if o.shipment != nil {
		return errs.NewValueIsInvalidErrorWithCause("shipment",
			fmt.Errorf("order %s already shipped as %s", o.number, o.shipment.trackingNumber))
	}
	if err := o.transition(Shipped, shipment.trackingNumber, at); err != nil {
		return err
	}
	o.shipment = shipment
	return nil
}

// Cancel ends the lifecycle from any non-terminal status. Reserved lines are
// left for the caller to release through the inventory ledger.
func (o *Order) Cancel(reason string, at time.Time) error {
	if err := o.transition(Cancelled, reason, at); err != nil {
		return err
	}
	if reason != "" {
		o.appendNote("Cancelled: " + reason + ". ")
	}
	return nil
}

// OverrideStatus is the administrative status set. It bypasses the lifecycle
// graph but never leaves a terminal status. Delivered and Cancelled stamp completedAt.
func (o *Order) OverrideStatus(target Status, at time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderIsTerminal, o.status)
	}
	if o.status == target {
		return nil
	}
	from := o.status
	o.status = target
	o.updatedAt = at
	if target == Delivered || target == Cancelled {
		o.completedAt = &at
	}
	o.record(from, target, "status override", at)
	return nil
}

// AddApproval appends a recorded decision.
func (o *Order) AddApproval(approval *Approval, at time.Time) error {
	if err := approval.Validate(); err != nil {
		return err
	}
	for _, existing := range o.approvals {
		if approval.taskID != "" && existing.taskID == approval.taskID {
			return errs.NewAlreadyExistsError("approval task", approval.taskID)
		}
	}
	o.approvals = append(o.approvals, approval)
	o.updatedAt = at
	return nil
}

func (o *Order) transition(target Status, reason string, at time.Time) error {
	next, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	from := o.status
	o.status = next
	o.updatedAt = at
	if next.stampsCompletion() {
		o.completedAt = &at
	}
	o.record(from, next, reason, at)
	return nil
}

func (o *Order) record(from, to Status, reason string, at time.Time) {
	o.events = append(o.events, StatusChanged{
		OrderID:     o.id,
		OrderNumber: o.number,
		From:        from,
		To:          to,
		Reason:      reason,
		At:          at,
	})
}

func (o *Order) markLine(lineID kernel.UUID, from, to ReservationState) error {
	for _, l := range o.items {
		if l.id.IsEqual(lineID) {
			return l.markReservation(from, to)
		}
	}
	return fmt.Errorf("%w: %s", ErrLineItemNotFound, lineID)
}

func (o *Order) appendNote(note string) {
	o.notes += note
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setShippingAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.shippingAddress = address
	return nil
}

// setItems attaches the lines and recomputes the total.
func (o *Order) setItems(items []*LineItem) error {
	total := kernel.ZeroMoney()
	lines := make([]*LineItem, 0, len(items))
	for _, l := range items {
		if err := l.Validate(); err != nil {
			return err
		}
		l.orderID = o.id
		total = total.Add(l.Subtotal())
		lines = append(lines, l)
	}
	o.items = lines
	o.total = total
	return nil
}
