package workflow

import (
	"fmt"
	"strings"

	"orderflow/internal/core/ports"
)

var (
	ErrPaymentFailed     = fmt.Errorf("payment failed: %w", ports.ErrStepFailed)
	ErrFulfillmentFailed = fmt.Errorf("fulfillment failed: %w", ports.ErrStepFailed)

	// ErrOrderNotProcessable is returned when a step finds the order in a
	// status it cannot act on, typically after a cancellation.
	ErrOrderNotProcessable = fmt.Errorf("order not processable: %w", ports.ErrStepFailed)

	// ErrNoHandler is returned by the registry for a step without a handler.
	ErrNoHandler = fmt.Errorf("no work handler: %w", ports.ErrStepFailed)
)

// ValidationFailedError lists the items that could not be reserved.
type ValidationFailedError struct {
	OrderNumber string
	Items       []string
}

func (e *ValidationFailedError) Error() string {
	if len(e.Items) == 0 {
		return fmt.Sprintf("order %s failed validation", e.OrderNumber)
	}
	return fmt.Sprintf("order %s failed validation: insufficient inventory for %s",
		e.OrderNumber, strings.Join(e.Items, ", "))
}

func (e *ValidationFailedError) Unwrap() error {
	return ports.ErrStepFailed
}
