package ports

import (
	"context"
)

// UnitOfWorkFactory creates a new UnitOfWork for each command or work handler invocation.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained from it
// use the transaction opened by Begin; before Begin they run in autocommit mode.
//
// Domain events of aggregates saved through the repositories are published
// after a successful Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error if no transaction is active or the commit fails.
	Commit(ctx context.Context) error

	// Rollback is a no-op after Commit.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	CustomerRepository() CustomerRepository
	ItemRepository() ItemRepository
	InventoryRepository() InventoryRepository
}
