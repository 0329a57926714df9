package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

var (
	// ErrInvalidTransition is returned when a status change is not an edge of the lifecycle graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOrderIsTerminal is returned for any change to an order that has reached a terminal status.
	ErrOrderIsTerminal = errors.New("order is in a terminal status")
)

// Status is the lifecycle state of an order.
//
//	Pending ──> Validating ──┬──> ValidationFailed
//	                         └──> PaymentProcessing ──┬──> PaymentFailed
//	                                                  └──> PaymentCompleted ──> Fulfilling ──┬──> FulfillmentFailed
//	                                                                                         └──> Shipping ──> Shipped ──> Delivered
//
//	any non-terminal status ──> Cancelled
//
// ValidationFailed, PaymentFailed, FulfillmentFailed, Delivered and Cancelled are terminal.
// Failed orders are kept for inspection and are never resumed.
type Status int

const (
	// Unknown is the zero value and never a valid status.
	Unknown Status = iota
	Pending
	Validating
	ValidationFailed
	PaymentProcessing
	PaymentFailed
	PaymentCompleted
	Fulfilling
	FulfillmentFailed
	Shipping
	Shipped
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "UNKNOWN",
		Pending:           "PENDING",
		Validating:        "VALIDATING",
		ValidationFailed:  "VALIDATION_FAILED",
		PaymentProcessing: "PAYMENT_PROCESSING",
		PaymentFailed:     "PAYMENT_FAILED",
		PaymentCompleted:  "PAYMENT_COMPLETED",
		Fulfilling:        "FULFILLING",
		FulfillmentFailed: "FULFILLMENT_FAILED",
		Shipping:          "SHIPPING",
		Shipped:           "SHIPPED",
		Delivered:         "DELIVERED",
		Cancelled:         "CANCELLED",
	}
}

// getTransitions lists the forward edges of the lifecycle graph. Cancellation
// is handled separately because it is allowed from every non-terminal status.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no outgoing edges
	return map[Status][]Status{
		Pending:           {Validating},
		Validating:        {ValidationFailed, PaymentProcessing},
		PaymentProcessing: {PaymentFailed, PaymentCompleted},
		PaymentCompleted:  {Fulfilling},
		Fulfilling:        {FulfillmentFailed, Shipping},
		Shipping:          {Shipped},
		Shipped:           {Delivered},
	}
}

// ParseStatus accepts the upper snake case names, case-insensitively.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		Pending, Validating, ValidationFailed, PaymentProcessing, PaymentFailed, PaymentCompleted,
		Fulfilling, FulfillmentFailed, Shipping, Shipped, Delivered, Cancelled,
	}
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case ValidationFailed, PaymentFailed, FulfillmentFailed, Delivered, Cancelled:
		return true
	default:
		return false
	}
}

// IsFailed reports whether s is one of the *_FAILED statuses.
func (s Status) IsFailed() bool {
	return s == ValidationFailed || s == PaymentFailed || s == FulfillmentFailed
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	if s.Validate() != nil || s.IsTerminal() {
		return false
	}
	if target == Cancelled {
		return true
	}
	for _, next := range getTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target when the edge s -> target exists.
//
// Returns:
//   - (target, nil) on a valid edge
//   - (Unknown, ErrOrderIsTerminal) when s is terminal
//   - (Unknown, ErrInvalidTransition) for any other status pair
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if s.IsTerminal() {
		return Unknown, fmt.Errorf("%w: %s", ErrOrderIsTerminal, s)
	}
	if !s.CanTransitionTo(target) {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
	return target, nil
}

// stampsCompletion reports whether entering s records the completion time.
func (s Status) stampsCompletion() bool {
	return s == Shipped || s == Delivered || s == Cancelled
}
