package order

import (
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

const numberTimeLayout = "20060102150405"

// NewNumber formats the order number "ORD-<yyyyMMddHHmmss>-<6 hex>". The suffix
// is taken from the order id so that numbers are reproducible for a given order.
func NewNumber(at time.Time, id kernel.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return "ORD-" + at.UTC().Format(numberTimeLayout) + "-" + suffix
}
