package workflow

import (
	"context"
	"fmt"
	"strconv"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// Process variables exchanged with the engine.
const (
	VarOrderID               = "orderId"
	VarOrderNumber           = "orderNumber"
	VarCategory              = "category"
	VarTotalAmount           = "totalAmount"
	VarCustomerID            = "customerId"
	VarValidationResult      = "validationResult"
	VarPaymentResult         = "paymentResult"
	VarPaymentReference      = "paymentReference"
	VarFulfillmentResult     = "fulfillmentResult"
	VarShippingResult        = "shippingResult"
	VarRequiresRefrigeration = "requiresRefrigeration"
	VarTrackingNumber        = "trackingNumber"
)

const (
	ResultPassed  = "PASSED"
	ResultFailed  = "FAILED"
	ResultSuccess = "SUCCESS"
)

// orderIDOf reads the order reference of an execution. The business key is
// the fallback for instances started without variables.
func orderIDOf(exec ports.Execution) (kernel.UUID, error) {
	raw := exec.BusinessKey()
	if v, ok := exec.Variable(VarOrderID); ok {
		if s, isString := v.(string); isString && s != "" {
			raw = s
		}
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: %w", ports.ErrStepFailed,
			errs.NewValueIsInvalidErrorWithCause(VarOrderID, err))
	}
	return id, nil
}

// requiresRefrigeration reads the flag validation recorded on the instance.
// Instances that never passed through validation fall back to the order.
func requiresRefrigeration(exec ports.Execution, o *order.Order) bool {
	if v, ok := exec.Variable(VarRequiresRefrigeration); ok {
		switch flag := v.(type) {
		case bool:
			return flag
		case string:
			if parsed, err := strconv.ParseBool(flag); err == nil {
				return parsed
			}
		}
	}
	return o.RequiresRefrigeration()
}

// commitOrder saves o and commits the unit of work it was loaded in.
func commitOrder(ctx context.Context, tx commands.TxManager, repo ports.OrderRepository, o *order.Order) error {
	if err := repo.Update(ctx, o); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
