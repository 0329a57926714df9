package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ApprovedVariable is the process variable carrying the decision to the engine.
const ApprovedVariable = "approved"

// RecordApprovalCommandHandler is the approval gate: it persists the decision
// on the order and then completes the engine task so the process resumes.
type RecordApprovalCommandHandler struct {
	uowFactory OrderUoWFactory
	tasks      TaskCompleter
	clock      kernel.Clock
	ids        kernel.IDGenerator
}

func NewRecordApprovalCommandHandler(
	uowFactory OrderUoWFactory,
	tasks TaskCompleter,
	clock kernel.Clock,
	ids kernel.IDGenerator,
) RecordApprovalCommandHandler {
	return RecordApprovalCommandHandler{
		uowFactory: uowFactory,
		tasks:      tasks,
		clock:      clock,
		ids:        ids,
	}
}

// Handle labels the approval with the task name, or order.UnknownApprovalType
// when the engine cannot resolve the task. Errors from CompleteTask propagate
// after the approval is committed; calling Handle again completes the task
// with the stored decision.
func (h *RecordApprovalCommandHandler) Handle(ctx context.Context, cmd RecordApprovalCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	approvalType := order.UnknownApprovalType
	task, taskErr := h.tasks.GetTask(ctx, cmd.TaskID())
	if taskErr == nil && task.Name != "" {
		approvalType = task.Name
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if taskErr == nil && task.ProcessInstanceID != o.ProcessInstanceID() {
		return errs.NewValueIsInvalidErrorWithCause("task id",
			fmt.Errorf("task %s does not belong to order %s", cmd.TaskID(), o.Number()))
	}

	// A retry after a failed CompleteTask finds the decision already stored.
	if recorded := findApproval(o, cmd.TaskID()); recorded != nil {
		return h.tasks.CompleteTask(ctx, cmd.TaskID(), ports.Variables{ApprovedVariable: recorded.Approved()})
	}

	now := h.clock.Now()
	approval, err := order.NewApproval(h.ids.NewID(), cmd.TaskID(), approvalType,
		cmd.Approved(), cmd.Comments(), cmd.Approver(), now)
	if err != nil {
		return err
	}

	if err = o.AddApproval(approval, now); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return h.tasks.CompleteTask(ctx, cmd.TaskID(), ports.Variables{ApprovedVariable: cmd.Approved()})
}

func findApproval(o *order.Order, taskID string) *order.Approval {
	for _, a := range o.Approvals() {
		if a.TaskID() == taskID {
			return a
		}
	}
	return nil
}
