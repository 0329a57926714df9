package flowengine

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"orderflow/internal/core/ports"
)

// MemoryStore keeps engine state in process memory. It serves tests and
// single-replica runs without a database.
type MemoryStore struct {
	mu        sync.Mutex
	instances map[string]Instance
	jobs      map[string]Job
	tasks     map[string]Task
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[string]Instance),
		jobs:      make(map[string]Job),
		tasks:     make(map[string]Task),
	}
}

func (s *MemoryStore) InsertInstance(_ context.Context, inst Instance, first *Job, firstTask *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findActive(inst.ProcessKey, inst.BusinessKey); ok && inst.State == ports.InstanceActive {
		return ErrActiveInstanceExists
	}
	s.instances[inst.ID] = copyInstance(inst)
	if first != nil {
		s.jobs[first.ID] = *first
	}
	if firstTask != nil {
		s.tasks[firstTask.ID] = *firstTask
	}
	return nil
}

func (s *MemoryStore) FindActiveInstance(_ context.Context, processKey, businessKey string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.findActive(processKey, businessKey)
	if !ok {
		return Instance{}, fmt.Errorf("%w: %s/%s", ports.ErrInstanceNotFound, processKey, businessKey)
	}
	return copyInstance(inst), nil
}

func (s *MemoryStore) GetInstance(_ context.Context, id string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[id]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %s", ports.ErrInstanceNotFound, id)
	}
	return copyInstance(inst), nil
}

func (s *MemoryStore) ClaimDueJobs(_ context.Context, now time.Time, limit int, lease time.Duration) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]Job, 0)
	for _, j := range s.jobs {
		if j.DueAt.After(now) {
			continue
		}
		if j.LockedUntil != nil && j.LockedUntil.After(now) {
			continue
		}
		due = append(due, j)
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].DueAt.Equal(due[b].DueAt) {
			return due[a].ID < due[b].ID
		}
		return due[a].DueAt.Before(due[b].DueAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	lockedUntil := now.Add(lease)
	for i := range due {
		due[i].LockedUntil = &lockedUntil
		s.jobs[due[i].ID] = due[i]
	}
	return due, nil
}

func (s *MemoryStore) RescheduleJob(_ context.Context, jobID string, attempts int, dueAt time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return ErrStaleTransition
	}
	j.Attempts = attempts
	j.DueAt = dueAt
	j.LockedUntil = nil
	j.LastError = lastError
	s.jobs[jobID] = j
	return nil
}

func (s *MemoryStore) Advance(_ context.Context, t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.instances[t.Instance.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrInstanceNotFound, t.Instance.ID)
	}
	if current.State != ports.InstanceActive {
		return ErrStaleTransition
	}
	if t.DoneJobID != "" {
		if _, ok = s.jobs[t.DoneJobID]; !ok {
			return ErrStaleTransition
		}
	}
	if t.DoneTaskID != "" {
		if task, found := s.tasks[t.DoneTaskID]; !found || task.CompletedAt != nil {
			return ErrStaleTransition
		}
	}

	now := t.At
	if t.DoneJobID != "" {
		delete(s.jobs, t.DoneJobID)
	}
	if t.DoneTaskID != "" {
		task := s.tasks[t.DoneTaskID]
		task.CompletedAt = &now
		s.tasks[t.DoneTaskID] = task
	}
	if t.DropPending {
		for id, j := range s.jobs {
			if j.InstanceID == t.Instance.ID {
				delete(s.jobs, id)
			}
		}
		for id, task := range s.tasks {
			if task.InstanceID == t.Instance.ID && task.CompletedAt == nil {
				task.CompletedAt = &now
				s.tasks[id] = task
			}
		}
	}
	if t.NextJob != nil {
		s.jobs[t.NextJob.ID] = *t.NextJob
	}
	if t.NextTask != nil {
		s.tasks[t.NextTask.ID] = *t.NextTask
	}
	s.instances[t.Instance.ID] = copyInstance(t.Instance)
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.CompletedAt != nil {
		return Task{}, fmt.Errorf("%w: %s", ports.ErrTaskNotFound, id)
	}
	return s.withInstanceKeys(task), nil
}

func (s *MemoryStore) ListOpenTasks(_ context.Context, q ports.TaskQuery) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Task, 0)
	for _, task := range s.tasks {
		if task.CompletedAt != nil {
			continue
		}
		if q.ProcessInstanceID != "" && task.InstanceID != q.ProcessInstanceID {
			continue
		}
		if len(q.CandidateGroups) > 0 && !slices.Contains(q.CandidateGroups, task.CandidateGroup) {
			continue
		}
		result = append(result, s.withInstanceKeys(task))
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].CreatedAt.Equal(result[b].CreatedAt) {
			return result[a].ID < result[b].ID
		}
		return result[a].CreatedAt.Before(result[b].CreatedAt)
	})
	return result, nil
}

// PendingJobs returns the jobs of an instance. Tests use it to observe retries.
func (s *MemoryStore) PendingJobs(instanceID string) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Job, 0)
	for _, j := range s.jobs {
		if j.InstanceID == instanceID {
			result = append(result, j)
		}
	}
	return result
}

func (s *MemoryStore) findActive(processKey, businessKey string) (Instance, bool) {
	for _, inst := range s.instances {
		if inst.ProcessKey == processKey && inst.BusinessKey == businessKey && inst.State == ports.InstanceActive {
			return inst, true
		}
	}
	return Instance{}, false
}

func (s *MemoryStore) withInstanceKeys(task Task) Task {
	if inst, ok := s.instances[task.InstanceID]; ok {
		task.ProcessKey = inst.ProcessKey
		task.BusinessKey = inst.BusinessKey
	}
	return task
}

func copyInstance(inst Instance) Instance {
	inst.Variables = inst.Variables.Clone()
	return inst
}
