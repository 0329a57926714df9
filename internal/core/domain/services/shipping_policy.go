package services

import (
	"strings"
	"time"

	"orderflow/internal/core/domain/model/catalog"
)

// ShippingRule is the carrier selection for one category variant.
type ShippingRule struct {
	TrackingPrefix string
	Carrier        string
	Method         string
	ETADays        int
}

// TrackingNumber prefixes suffix with the rule's category prefix.
func (r ShippingRule) TrackingNumber(suffix string) string {
	return r.TrackingPrefix + "-" + suffix
}

func (r ShippingRule) EstimatedDelivery(shippedAt time.Time) time.Time {
	return shippedAt.AddDate(0, 0, r.ETADays)
}

type shippingKey struct {
	category     catalog.Category
	refrigerated bool
}

// ShippingPolicy selects a ShippingRule by category and, where a category
// defines one, by the refrigeration flag raised during validation.
type ShippingPolicy struct {
	rules map[shippingKey]ShippingRule
}

func NewShippingPolicy() ShippingPolicy {
	return ShippingPolicy{rules: map[shippingKey]ShippingRule{
		{catalog.Electronics, false}: {TrackingPrefix: "ELEC", Carrier: "FedEx", Method: "SIGNATURE_INSURED", ETADays: 3},
		{catalog.Clothing, false}:    {TrackingPrefix: "CLO", Carrier: "USPS", Method: "STANDARD_WITH_RETURN_LABEL", ETADays: 5},
		{catalog.Food, false}:        {TrackingPrefix: "FOOD", Carrier: "UPS", Method: "STANDARD_FOOD", ETADays: 3},
		{catalog.Food, true}:         {TrackingPrefix: "FOOD", Carrier: "FedEx", Method: "REFRIGERATED_EXPRESS", ETADays: 1},
	}}
}

// WithRule returns a copy of the policy with rule registered.
func (p ShippingPolicy) WithRule(category catalog.Category, refrigerated bool, rule ShippingRule) ShippingPolicy {
	rules := make(map[shippingKey]ShippingRule, len(p.rules)+1)
	for k, v := range p.rules {
		rules[k] = v
	}
	rules[shippingKey{category, refrigerated}] = rule
	return ShippingPolicy{rules: rules}
}

// RuleFor looks up (category, refrigerated), then the category's plain rule,
// then a standard ground rule prefixed with the category name.
func (p ShippingPolicy) RuleFor(category catalog.Category, refrigerated bool) ShippingRule {
	if rule, ok := p.rules[shippingKey{category, refrigerated}]; ok {
		return rule
	}
	if rule, ok := p.rules[shippingKey{category, false}]; ok {
		return rule
	}
	prefix := strings.ToUpper(string(category))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return ShippingRule{TrackingPrefix: prefix, Carrier: "UPS", Method: "STANDARD", ETADays: 5}
}
