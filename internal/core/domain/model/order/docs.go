// Package order provides the Order aggregate of the order lifecycle service.
//
// The package includes:
//   - Order: the aggregate root owning line items, approvals and the shipment
//   - Status: the lifecycle state machine, including terminal and failed states
//   - LineItem: an order line with price snapshot and reservation bookkeeping
//   - Approval, Shipment: owned entities recorded by the approval gate and the shipping step
//   - StatusChanged: the domain event recorded on every status change
//
// Key business rules:
//   - The total always equals the sum of line subtotals
//   - Lifecycle steps move the status forward only; any non-terminal order can be cancelled
//   - Terminal orders (failed, delivered, cancelled) accept no further changes
//   - Lifecycle step methods are idempotent for the status they enter
package order
