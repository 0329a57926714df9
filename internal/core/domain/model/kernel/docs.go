// Package kernel provides the shared value objects of the order domain.
//
// The package includes:
//   - UUID: identity of every aggregate and entity, plus the IDGenerator abstraction
//   - Money: exact, non-negative monetary amounts backed by shopspring/decimal
//   - Address: the validated shipping destination of an order
//   - Clock: the injectable time source used for all domain timestamps
//
// Value objects embed guard.ConstructorGuard so a zero value fails Validate.
package kernel
