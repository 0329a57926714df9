package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRecordApprovalCommandIsNotConstructed = errors.New(
	"RecordApprovalCommand must be created via NewRecordApprovalCommand constructor",
)

// SystemApprover is recorded when the caller does not identify the approver.
const SystemApprover = "system"

// RecordApprovalCommand is a human decision on an approval task of an order.
type RecordApprovalCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	taskID   string
	approved bool
	comments string
	approver string

	guard guard.ConstructorGuard
}

func NewRecordApprovalCommand(
	orderID kernel.UUID,
	taskID string,
	approved bool,
	comments, approver string,
) (RecordApprovalCommand, error) {
	taskID = strings.TrimSpace(taskID)

	var taskErr error
	if taskID == "" {
		taskErr = errs.NewValueIsRequiredError("task id")
	}
	if err := errors.Join(orderID.Validate(), taskErr); err != nil {
		return RecordApprovalCommand{}, err
	}

	approver = strings.TrimSpace(approver)
	if approver == "" {
		approver = SystemApprover
	}

	return RecordApprovalCommand{
		orderID:  orderID,
		taskID:   taskID,
		approved: approved,
		comments: strings.TrimSpace(comments),
		approver: approver,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RecordApprovalCommand) Validate() error {
	return c.guard.Validate(ErrRecordApprovalCommandIsNotConstructed)
}

func (c RecordApprovalCommand) OrderID() kernel.UUID { return c.orderID }
func (c RecordApprovalCommand) TaskID() string       { return c.taskID }
func (c RecordApprovalCommand) Approved() bool       { return c.approved }
func (c RecordApprovalCommand) Comments() string     { return c.comments }
func (c RecordApprovalCommand) Approver() string     { return c.approver }
