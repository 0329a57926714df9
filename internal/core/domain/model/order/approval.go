package order

import (
	"errors"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// UnknownApprovalType labels an approval whose task name the engine could not resolve.
const UnknownApprovalType = "Unknown Task"

var ErrApprovalIsNotConstructed = errors.New("Approval must be created via NewApproval or RestoreApproval")

// Approval is a recorded human decision on an approval task of the order's process.
type Approval struct {
	id           kernel.UUID
	taskID       string
	approvalType string
	approved     bool
	comments     string
	approver     string
	createdAt    time.Time
	decidedAt    time.Time

	isConstructed bool
}

// NewApproval records a decision taken at decidedAt. A blank approval type
// falls back to UnknownApprovalType.
func NewApproval(id kernel.UUID, taskID, approvalType string, approved bool, comments, approver string, decidedAt time.Time) (*Approval, error) {
	return RestoreApproval(id, taskID, approvalType, approved, comments, approver, decidedAt, decidedAt)
}

func RestoreApproval(
	id kernel.UUID,
	taskID, approvalType string,
	approved bool,
	comments, approver string,
	createdAt, decidedAt time.Time,
) (*Approval, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(approvalType) == "" {
		approvalType = UnknownApprovalType
	}
	return &Approval{
		id:            id,
		taskID:        taskID,
		approvalType:  approvalType,
		approved:      approved,
		comments:      comments,
		approver:      approver,
		createdAt:     createdAt,
		decidedAt:     decidedAt,
		isConstructed: true,
	}, nil
}

func (a *Approval) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrApprovalIsNotConstructed
	}
	return nil
}

func (a *Approval) ID() kernel.UUID      { return a.id }
func (a *Approval) TaskID() string       { return a.taskID }
func (a *Approval) ApprovalType() string { return a.approvalType }
func (a *Approval) Approved() bool       { return a.approved }
func (a *Approval) Comments() string     { return a.comments }
func (a *Approval) Approver() string     { return a.approver }
func (a *Approval) CreatedAt() time.Time { return a.createdAt }
func (a *Approval) DecidedAt() time.Time { return a.decidedAt }
