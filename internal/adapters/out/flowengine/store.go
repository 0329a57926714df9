package flowengine

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/ports"
)

var (
	// ErrActiveInstanceExists is returned by InsertInstance when the process and
	// business key already have an active instance.
	ErrActiveInstanceExists = errors.New("active instance already exists")

	// ErrStaleTransition is returned by Advance when the job or task it
	// completes is gone, or the instance is no longer active.
	ErrStaleTransition = errors.New("stale transition")
)

// Instance is the stored state of a process instance.
type Instance struct {
	ID            string
	ProcessKey    string
	BusinessKey   string
	Category      string
	State         ports.InstanceState
	StepIndex     int
	CurrentStep   string
	Variables     ports.Variables
	FailureReason string
	StartedAt     time.Time
	EndedAt       *time.Time
}

func (i Instance) toPort() ports.ProcessInstance {
	return ports.ProcessInstance{
		ID:            i.ID,
		ProcessKey:    i.ProcessKey,
		BusinessKey:   i.BusinessKey,
		State:         i.State,
		CurrentStep:   i.CurrentStep,
		Variables:     i.Variables.Clone(),
		FailureReason: i.FailureReason,
		StartedAt:     i.StartedAt,
		EndedAt:       i.EndedAt,
	}
}

// Job is a pending automated step.
type Job struct {
	ID          string
	InstanceID  string
	Step        string
	Attempts    int
	DueAt       time.Time
	LockedUntil *time.Time
	LastError   string
}

// Task is a pending human step. ProcessKey and BusinessKey are filled on reads.
type Task struct {
	ID             string
	InstanceID     string
	Name           string
	CandidateGroup string
	CreatedAt      time.Time
	CompletedAt    *time.Time

	ProcessKey  string
	BusinessKey string
}

func (t Task) toPort() ports.Task {
	return ports.Task{
		ID:                t.ID,
		Name:              t.Name,
		ProcessInstanceID: t.InstanceID,
		ProcessKey:        t.ProcessKey,
		BusinessKey:       t.BusinessKey,
		CandidateGroup:    t.CandidateGroup,
		CreatedAt:         t.CreatedAt,
	}
}

// Transition atomically moves an active instance forward.
type Transition struct {
	// Instance is the new state. The stored instance must still be active.
	Instance Instance
	// DoneJobID is deleted; it must exist.
	DoneJobID string
	// DoneTaskID is marked completed; it must be open.
	DoneTaskID string
	NextJob    *Job
	NextTask   *Task
	// DropPending deletes every job and closes every task of the instance.
	DropPending bool
	// At stamps completed tasks.
	At time.Time
}

// Store persists engine state. Implementations must make InsertInstance,
// ClaimDueJobs and Advance atomic.
type Store interface {
	InsertInstance(ctx context.Context, inst Instance, first *Job, firstTask *Task) error
	FindActiveInstance(ctx context.Context, processKey, businessKey string) (Instance, error)
	GetInstance(ctx context.Context, id string) (Instance, error)

	// ClaimDueJobs leases up to limit jobs due at now for lease.
	ClaimDueJobs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Job, error)
	RescheduleJob(ctx context.Context, jobID string, attempts int, dueAt time.Time, lastError string) error
	Advance(ctx context.Context, t Transition) error

	GetTask(ctx context.Context, id string) (Task, error)
	ListOpenTasks(ctx context.Context, q ports.TaskQuery) ([]Task, error)
}
