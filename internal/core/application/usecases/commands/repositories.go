// Package commands contains the operations that modify order state.
// Every handler validates its command, opens a unit of work, mutates aggregates
// through repositories and commits; engine calls happen after the commit.
package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
)

// Unit of Work interfaces narrowed to the repositories a handler touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	CustomerRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
	}

	ItemRepoFactory interface {
		ItemRepository() ports.ItemRepository
	}

	InventoryRepoFactory interface {
		InventoryRepository() ports.InventoryRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderInventoryUoW covers operations that change an order together with the
	// ledger rows its lines reserved.
	OrderInventoryUoW interface {
		TxManager
		OrderRepoFactory
		InventoryRepoFactory
	}

	OrderInventoryUoWFactory interface {
		Create() OrderInventoryUoW
	}

	CustomerUoW interface {
		TxManager
		CustomerRepoFactory
	}

	CustomerUoWFactory interface {
		Create() CustomerUoW
	}

	// CatalogUoW manages an item together with its ledger row.
	CatalogUoW interface {
		TxManager
		ItemRepoFactory
		InventoryRepoFactory
	}

	CatalogUoWFactory interface {
		Create() CatalogUoW
	}

	InventoryUoW interface {
		TxManager
		InventoryRepoFactory
	}

	InventoryUoWFactory interface {
		Create() InventoryUoW
	}

	// PlacementUoW is used by order placement, which resolves the customer and
	// the items before persisting the order.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   c, err := uow.CustomerRepository().FindByEmail(ctx, email)
	//   item, err := uow.ItemRepository().Get(ctx, itemID)
	//   err = uow.OrderRepository().Add(ctx, o)
	//
	//   err = uow.Commit(ctx)
	PlacementUoW interface {
		TxManager
		CustomerRepoFactory
		ItemRepoFactory
		OrderRepoFactory
	}

	PlacementUoWFactory interface {
		Create() PlacementUoW
	}
)

// Process collaborators. They are implemented by the workflow bridge.
type (
	ProcessStarter interface {
		StartProcess(ctx context.Context, orderID kernel.UUID) (string, error)
	}

	ProcessTerminator interface {
		TerminateProcess(ctx context.Context, processInstanceID, reason string) error
	}

	TaskCompleter interface {
		GetTask(ctx context.Context, taskID string) (ports.Task, error)
		CompleteTask(ctx context.Context, taskID string, vars ports.Variables) error
	}
)
