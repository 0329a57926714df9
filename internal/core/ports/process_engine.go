package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStepFailed marks a business failure of a work handler. The engine fails
	// the process instance instead of retrying the step.
	ErrStepFailed = errors.New("process step failed")

	// ErrInstanceNotFound is returned for an unknown process instance reference.
	ErrInstanceNotFound = errors.New("process instance not found")

	// ErrTaskNotFound is returned for an unknown or already completed task.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUnknownProcess is returned when no definition exists for a process key.
	ErrUnknownProcess = errors.New("unknown process definition")
)

// Variables are the process variables exchanged with the engine. Values are
// primitives only: string, bool and numbers.
type Variables map[string]any

// Clone returns a shallow copy so that callers cannot mutate engine state.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the variable as a string, or "" when absent or of another type.
func (v Variables) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the variable as a bool. ok is false when absent or of another type.
func (v Variables) Bool(name string) (value bool, ok bool) {
	value, ok = v[name].(bool)
	return value, ok
}

type InstanceState string

const (
	InstanceActive     InstanceState = "ACTIVE"
	InstanceCompleted  InstanceState = "COMPLETED"
	InstanceFailed     InstanceState = "FAILED"
	InstanceTerminated InstanceState = "TERMINATED"
)

// ProcessInstance is a running or finished execution of a process definition.
type ProcessInstance struct {
	ID            string
	ProcessKey    string
	BusinessKey   string
	State         InstanceState
	CurrentStep   string
	Variables     Variables
	FailureReason string
	StartedAt     time.Time
	EndedAt       *time.Time
}

// Task is a unit of work waiting for a human decision.
type Task struct {
	ID                string
	Name              string
	ProcessInstanceID string
	ProcessKey        string
	BusinessKey       string
	CandidateGroup    string
	CreatedAt         time.Time
}

// TaskQuery filters open tasks. Empty fields do not filter.
type TaskQuery struct {
	ProcessInstanceID string
	CandidateGroups   []string
}

// ProcessEngine is the contract the order core requires from a workflow runtime.
type ProcessEngine interface {
	// StartInstance starts processKey for businessKey. Starting a key that already
	// has an active instance for the same business key returns that instance.
	StartInstance(ctx context.Context, processKey, businessKey string, vars Variables) (string, error)
	GetInstance(ctx context.Context, instanceID string) (ProcessInstance, error)
	QueryTasks(ctx context.Context, q TaskQuery) ([]Task, error)
	GetTask(ctx context.Context, taskID string) (Task, error)

	// CompleteTask merges vars into the instance and resumes it.
	CompleteTask(ctx context.Context, taskID string, vars Variables) error

	// TerminateInstance stops an active instance and drops its pending work.
	TerminateInstance(ctx context.Context, instanceID, reason string) error
}

// Execution is the engine's callback context for one step invocation.
type Execution interface {
	// ID is stable across redeliveries of the same step.
	ID() string
	ProcessInstanceID() string
	BusinessKey() string
	Variable(name string) (any, bool)
	SetVariable(name string, value any)
}

// WorkHandler runs one automated step. Returning an error that wraps
// ErrStepFailed ends the instance; any other error is retried.
type WorkHandler interface {
	Execute(ctx context.Context, exec Execution) error
}

// WorkHandlerFunc adapts a function to WorkHandler.
type WorkHandlerFunc func(ctx context.Context, exec Execution) error

func (f WorkHandlerFunc) Execute(ctx context.Context, exec Execution) error {
	return f(ctx, exec)
}

// WorkHandlerResolver finds the handler for a step of a category's process.
type WorkHandlerResolver interface {
	Resolve(category, step string) (WorkHandler, error)
}
