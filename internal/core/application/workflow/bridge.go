// Package workflow connects orders to the process engine. Bridge starts,
// queries and stops process instances; the work handlers execute the
// automated steps the engine calls back into.
//
// Every handler reloads the order and acts on its stored status, so a
// redelivered callback repeats no side effect.
package workflow

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

var (
	_ commands.ProcessStarter    = (*Bridge)(nil)
	_ commands.ProcessTerminator = (*Bridge)(nil)
	_ commands.TaskCompleter     = (*Bridge)(nil)
)

// Bridge is the outbound side of the engine integration.
type Bridge struct {
	engine     ports.ProcessEngine
	router     services.CategoryRouter
	uowFactory commands.OrderUoWFactory
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewBridge(
	engine ports.ProcessEngine,
	router services.CategoryRouter,
	uowFactory commands.OrderUoWFactory,
	clock kernel.Clock,
	logger *slog.Logger,
) *Bridge {
	return &Bridge{
		engine:     engine,
		router:     router,
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "workflow-bridge"),
	}
}

// StartProcess starts the process of the order's category and stores the
// reference on the order. An order that already has a reference returns it.
func (b *Bridge) StartProcess(ctx context.Context, orderID kernel.UUID) (string, error) {
	uow := b.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.ProcessInstanceID() != "" {
		return o.ProcessInstanceID(), nil
	}

	route, err := b.router.RouteOrder(o)
	if err != nil {
		return "", err
	}

	vars := ports.Variables{
		VarOrderID:     o.ID().String(),
		VarOrderNumber: o.Number(),
		VarCategory:    string(route.Category),
		VarTotalAmount: o.Total().String(),
		VarCustomerID:  o.CustomerID().String(),
	}
	ref, err := b.engine.StartInstance(ctx, route.ProcessKey, o.ID().String(), vars)
	if err != nil {
		return "", err
	}

	if err = o.AttachProcess(ref, b.clock.Now()); err != nil {
		return "", err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", err
	}

	b.logger.InfoContext(ctx, "order process started",
		"order_id", o.ID().String(),
		"order_number", o.Number(),
		"process_key", route.ProcessKey,
		"process_instance_id", ref)
	return ref, nil
}

// ActiveTasksFor lists the open tasks of the order's process. An order
// without a process has none.
func (b *Bridge) ActiveTasksFor(ctx context.Context, orderID kernel.UUID) ([]ports.Task, error) {
	uow := b.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ProcessInstanceID() == "" {
		return []ports.Task{}, nil
	}
	return b.engine.QueryTasks(ctx, ports.TaskQuery{ProcessInstanceID: o.ProcessInstanceID()})
}

// PendingApprovalTasks lists the open tasks of every approval team.
func (b *Bridge) PendingApprovalTasks(ctx context.Context) ([]ports.Task, error) {
	teams := b.router.ApprovalTeams()
	if len(teams) == 0 {
		return []ports.Task{}, nil
	}
	return b.engine.QueryTasks(ctx, ports.TaskQuery{CandidateGroups: teams})
}

func (b *Bridge) GetTask(ctx context.Context, taskID string) (ports.Task, error) {
	return b.engine.GetTask(ctx, taskID)
}

func (b *Bridge) CompleteTask(ctx context.Context, taskID string, vars ports.Variables) error {
	return b.engine.CompleteTask(ctx, taskID, vars)
}

func (b *Bridge) TerminateProcess(ctx context.Context, processInstanceID, reason string) error {
	return b.engine.TerminateInstance(ctx, processInstanceID, reason)
}
