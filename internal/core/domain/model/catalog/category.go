package catalog

import (
	"strings"

	"orderflow/internal/pkg/errs"
)

// Category classifies catalog items and selects the lifecycle an order follows.
// The set is open: routes for new categories are registered with the category
// router rather than added here.
type Category string

const (
	Electronics Category = "electronics"
	Clothing    Category = "clothing"
	Food        Category = "food"
)

// NewCategory normalizes s (trimmed, lower case). Blank input is rejected.
func NewCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", errs.NewValueIsRequiredError("category")
	}
	return c, nil
}

// IsKnown reports whether c is one of the built-in categories.
func (c Category) IsKnown() bool {
	switch c {
	case Electronics, Clothing, Food:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}
