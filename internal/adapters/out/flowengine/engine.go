package flowengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
	DefaultLease       = 5 * time.Minute
	DefaultBatchSize   = 20
	DefaultConcurrency = 8
)

var _ ports.ProcessEngine = (*Engine)(nil)

// Engine implements ports.ProcessEngine. Work handlers run only inside
// RunDueJobs, which the process engine job calls periodically.
type Engine struct {
	store    Store
	defs     map[string]Definition
	resolver ports.WorkHandlerResolver
	clock    kernel.Clock
	logger   *slog.Logger
	newID    func() string

	maxAttempts int
	retryDelay  time.Duration
	lease       time.Duration
	batchSize   int
	concurrency int
}

type Option func(*Engine)

// WithMaxAttempts bounds the executions of a step failing with a technical error.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithRetryDelay sets the delay before the first retry. It doubles per attempt.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

func WithLease(d time.Duration) Option {
	return func(e *Engine) { e.lease = d }
}

func WithBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(
	store Store,
	defs []Definition,
	resolver ports.WorkHandlerResolver,
	clock kernel.Clock,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:       store,
		defs:        make(map[string]Definition, len(defs)),
		resolver:    resolver,
		clock:       clock,
		logger:      slog.Default(),
		newID:       uuid.NewString,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		lease:       DefaultLease,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, d := range defs {
		e.defs[d.Key] = d
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "flowengine")
	return e
}

func (e *Engine) StartInstance(
	ctx context.Context,
	processKey, businessKey string,
	vars ports.Variables,
) (string, error) {
	def, ok := e.defs[processKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ports.ErrUnknownProcess, processKey)
	}

	existing, err := e.store.FindActiveInstance(ctx, processKey, businessKey)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ports.ErrInstanceNotFound) {
		return "", err
	}

	now := e.clock.Now()
	inst := Instance{
		ID:          e.newID(),
		ProcessKey:  processKey,
		BusinessKey: businessKey,
		Category:    def.Category,
		State:       ports.InstanceActive,
		Variables:   vars.Clone(),
		StartedAt:   now,
	}
	inst, job, task := e.enter(def, inst, 0, now)

	err = e.store.InsertInstance(ctx, inst, job, task)
	if errors.Is(err, ErrActiveInstanceExists) {
		existing, err = e.store.FindActiveInstance(ctx, processKey, businessKey)
		if err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", err
	}

	e.logger.InfoContext(ctx, "process instance started",
		"process_instance_id", inst.ID,
		"process_key", processKey,
		"business_key", businessKey)
	return inst.ID, nil
}

func (e *Engine) GetInstance(ctx context.Context, instanceID string) (ports.ProcessInstance, error) {
	inst, err := e.store.GetInstance(ctx, instanceID)
	if err != nil {
		return ports.ProcessInstance{}, err
	}
	return inst.toPort(), nil
}

func (e *Engine) QueryTasks(ctx context.Context, q ports.TaskQuery) ([]ports.Task, error) {
	tasks, err := e.store.ListOpenTasks(ctx, q)
	if err != nil {
		return nil, err
	}
	result := make([]ports.Task, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, t.toPort())
	}
	return result, nil
}

func (e *Engine) GetTask(ctx context.Context, taskID string) (ports.Task, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return ports.Task{}, err
	}
	return t.toPort(), nil
}

// CompleteTask closes an open task and moves the instance to the next step,
// or to the task's reject step when vars carry DecisionVariable=false.
func (e *Engine) CompleteTask(ctx context.Context, taskID string, vars ports.Variables) error {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	inst, err := e.store.GetInstance(ctx, task.InstanceID)
	if err != nil {
		return err
	}
	if inst.State != ports.InstanceActive {
		return fmt.Errorf("%w: instance %s is %s", ports.ErrTaskNotFound, inst.ID, inst.State)
	}
	def, ok := e.defs[inst.ProcessKey]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrUnknownProcess, inst.ProcessKey)
	}
	if inst.StepIndex >= len(def.Steps) || def.Steps[inst.StepIndex].Task == nil {
		return fmt.Errorf("%w: instance %s is not waiting for a task", ports.ErrTaskNotFound, inst.ID)
	}
	step := def.Steps[inst.StepIndex]

	now := e.clock.Now()
	merged := inst.Variables.Clone()
	for k, v := range vars {
		merged[k] = v
	}
	inst.Variables = merged

	t := Transition{DoneTaskID: task.ID, At: now}
	if approved, set := vars.Bool(DecisionVariable); set && !approved && step.Task.RejectStep != "" {
		inst.CurrentStep = step.Task.RejectStep
		t.NextJob = &Job{ID: e.newID(), InstanceID: inst.ID, Step: step.Task.RejectStep, DueAt: now}
	} else {
		inst, t.NextJob, t.NextTask = e.enter(def, inst, inst.StepIndex+1, now)
	}
	t.Instance = inst

	if err = e.store.Advance(ctx, t); err != nil {
		if errors.Is(err, ErrStaleTransition) {
			return fmt.Errorf("%w: %s", ports.ErrTaskNotFound, taskID)
		}
		return err
	}
	return nil
}

// TerminateInstance stops an active instance. Terminating an instance that
// already ended is a no-op.
func (e *Engine) TerminateInstance(ctx context.Context, instanceID, reason string) error {
	inst, err := e.store.GetInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if inst.State != ports.InstanceActive {
		return nil
	}

	now := e.clock.Now()
	inst.State = ports.InstanceTerminated
	inst.FailureReason = reason
	inst.EndedAt = &now

	err = e.store.Advance(ctx, Transition{Instance: inst, DropPending: true, At: now})
	if errors.Is(err, ErrStaleTransition) {
		return nil
	}
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "process instance terminated",
		"process_instance_id", instanceID,
		"reason", reason)
	return nil
}

// RunDueJobs claims the jobs due now and executes them concurrently. It
// returns the number of jobs claimed. Step failures are recorded on the
// instance, not returned.
func (e *Engine) RunDueJobs(ctx context.Context) (int, error) {
	jobs, err := e.store.ClaimDueJobs(ctx, e.clock.Now(), e.batchSize, e.lease)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			e.runJob(ctx, job)
			return nil
		})
	}
	return len(jobs), g.Wait()
}

func (e *Engine) runJob(ctx context.Context, job Job) {
	logger := e.logger.With("job_id", job.ID, "process_instance_id", job.InstanceID, "step", job.Step)

	inst, err := e.store.GetInstance(ctx, job.InstanceID)
	if err != nil {
		logger.ErrorContext(ctx, "load instance failed", "error", err)
		return
	}
	if inst.State != ports.InstanceActive {
		return
	}
	def, ok := e.defs[inst.ProcessKey]
	if !ok {
		e.fail(ctx, logger, inst, job, fmt.Errorf("%w: %s", ports.ErrUnknownProcess, inst.ProcessKey))
		return
	}

	handler, err := e.resolver.Resolve(inst.Category, job.Step)
	if err != nil {
		e.fail(ctx, logger, inst, job, err)
		return
	}

	exec := newExecution(job.ID, inst)
	err = e.execute(ctx, handler, exec)
	inst.Variables = exec.vars

	switch {
	case err == nil:
		next := inst.StepIndex + 1
		if def.stepIndex(job.Step) < 0 {
			// side steps such as reject end the process
			next = len(def.Steps)
		}
		now := e.clock.Now()
		t := Transition{DoneJobID: job.ID, At: now}
		inst, t.NextJob, t.NextTask = e.enter(def, inst, next, now)
		t.Instance = inst
		e.advance(ctx, logger, t)
	case errors.Is(err, ports.ErrStepFailed):
		e.fail(ctx, logger, inst, job, err)
	case job.Attempts+1 >= e.maxAttempts:
		e.fail(ctx, logger, inst, job, fmt.Errorf("retries exhausted after %d attempts: %w", job.Attempts+1, err))
	default:
		attempts := job.Attempts + 1
		delay := e.retryDelay << (attempts - 1)
		logger.WarnContext(ctx, "step failed, retrying",
			"attempt", attempts,
			"delay", delay,
			"error", err)
		if rErr := e.store.RescheduleJob(ctx, job.ID, attempts, e.clock.Now().Add(delay), err.Error()); rErr != nil {
			logger.ErrorContext(ctx, "reschedule job failed", "error", rErr)
		}
	}
}

func (e *Engine) execute(ctx context.Context, handler ports.WorkHandler, exec *execution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work handler panicked: %v", r)
		}
	}()
	return handler.Execute(ctx, exec)
}

func (e *Engine) fail(ctx context.Context, logger *slog.Logger, inst Instance, job Job, cause error) {
	now := e.clock.Now()
	inst.State = ports.InstanceFailed
	inst.FailureReason = cause.Error()
	inst.EndedAt = &now

	logger.WarnContext(ctx, "process instance failed", "error", cause)
	e.advance(ctx, logger, Transition{Instance: inst, DoneJobID: job.ID, At: now})
}

func (e *Engine) advance(ctx context.Context, logger *slog.Logger, t Transition) {
	err := e.store.Advance(ctx, t)
	switch {
	case err == nil:
		if t.Instance.State == ports.InstanceCompleted {
			logger.InfoContext(ctx, "process instance completed")
		}
	case errors.Is(err, ErrStaleTransition):
		logger.InfoContext(ctx, "job result discarded, instance moved on")
	default:
		logger.ErrorContext(ctx, "advance instance failed", "error", err)
	}
}

// enter positions inst at step idx and returns the work that step needs.
// Past the last step the instance completes.
func (e *Engine) enter(def Definition, inst Instance, idx int, now time.Time) (Instance, *Job, *Task) {
	inst.StepIndex = idx
	if idx >= len(def.Steps) {
		inst.State = ports.InstanceCompleted
		inst.CurrentStep = ""
		inst.EndedAt = &now
		return inst, nil, nil
	}

	step := def.Steps[idx]
	inst.CurrentStep = step.Name
	if step.Task != nil {
		return inst, nil, &Task{
			ID:             e.newID(),
			InstanceID:     inst.ID,
			Name:           step.Task.Name,
			CandidateGroup: step.Task.CandidateGroup,
			CreatedAt:      now,
		}
	}
	return inst, &Job{ID: e.newID(), InstanceID: inst.ID, Step: step.Name, DueAt: now}, nil
}
