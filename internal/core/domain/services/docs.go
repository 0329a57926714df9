// Package services provides the stateless domain services of the order
// lifecycle: the CategoryRouter, which maps an order's primary category to its
// process key, approval team and step sequence, and the ShippingPolicy, which
// selects carrier, method, tracking prefix and delivery estimate per category.
//
// Both are pure data-driven tables; adding a category means registering a
// route and, optionally, a shipping rule.
package services
