package services_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestShippingPolicy_RuleFor(t *testing.T) {
	policy := services.NewShippingPolicy()

	tests := []struct {
		name         string
		category     catalog.Category
		refrigerated bool
		want         services.ShippingRule
	}{
		{
			name:     "electronics ship insured with signature",
			category: catalog.Electronics,
			want:     services.ShippingRule{TrackingPrefix: "ELEC", Carrier: "FedEx", Method: "SIGNATURE_INSURED", ETADays: 3},
		},
		{
			name:     "clothing ships with a return label",
			category: catalog.Clothing,
			want:     services.ShippingRule{TrackingPrefix: "CLO", Carrier: "USPS", Method: "STANDARD_WITH_RETURN_LABEL", ETADays: 5},
		},
		{
			name:     "shelf stable food",
			category: catalog.Food,
			want:     services.ShippingRule{TrackingPrefix: "FOOD", Carrier: "UPS", Method: "STANDARD_FOOD", ETADays: 3},
		},
		{
			name:         "refrigerated food goes express",
			category:     catalog.Food,
			refrigerated: true,
			want:         services.ShippingRule{TrackingPrefix: "FOOD", Carrier: "FedEx", Method: "REFRIGERATED_EXPRESS", ETADays: 1},
		},
		{
			name:         "refrigeration flag without a variant uses the plain rule",
			category:     catalog.Electronics,
			refrigerated: true,
			want:         services.ShippingRule{TrackingPrefix: "ELEC", Carrier: "FedEx", Method: "SIGNATURE_INSURED", ETADays: 3},
		},
		{
			name:     "unknown category falls back to ground",
			category: catalog.Category("furniture"),
			want:     services.ShippingRule{TrackingPrefix: "FURN", Carrier: "UPS", Method: "STANDARD", ETADays: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.RuleFor(tt.category, tt.refrigerated))
		})
	}
}

func TestShippingPolicy_WithRule(t *testing.T) {
	base := services.NewShippingPolicy()
	toys := services.ShippingRule{TrackingPrefix: "TOY", Carrier: "DHL", Method: "PARCEL", ETADays: 4}

	extended := base.WithRule(catalog.Category("toys"), false, toys)

	assert.Equal(t, toys, extended.RuleFor(catalog.Category("toys"), false))
	assert.Equal(t, "TOYS", base.RuleFor(catalog.Category("toys"), false).TrackingPrefix)
}

func TestShippingRule_TrackingAndEstimate(t *testing.T) {
	rule := services.NewShippingPolicy().RuleFor(catalog.Food, true)
	shippedAt := time.Date(2024, 3, 30, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "FOOD-ABC123", rule.TrackingNumber("ABC123"))
	assert.Equal(t, time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC), rule.EstimatedDelivery(shippedAt))
}
