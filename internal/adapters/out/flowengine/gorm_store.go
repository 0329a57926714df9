package flowengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const activeInstanceConstraint = "process_instances_active_key"

type instanceDTO struct {
	ID            string `gorm:"primaryKey"`
	ProcessKey    string
	BusinessKey   string
	Category      string
	State         string
	StepIndex     int
	CurrentStep   string
	Variables     string `gorm:"type:jsonb"`
	FailureReason string
	StartedAt     time.Time
	EndedAt       *time.Time
}

func (instanceDTO) TableName() string { return "process_instances" }

type jobDTO struct {
	ID          string `gorm:"primaryKey"`
	InstanceID  string
	Step        string
	Attempts    int
	DueAt       time.Time
	LockedUntil *time.Time
	LastError   string
}

func (jobDTO) TableName() string { return "process_jobs" }

type taskDTO struct {
	ID             string `gorm:"primaryKey"`
	InstanceID     string
	Name           string
	CandidateGroup string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

func (taskDTO) TableName() string { return "process_tasks" }

// taskRow is a task joined with the keys of its instance.
type taskRow struct {
	taskDTO
	ProcessKey  string
	BusinessKey string
}

// GormStore persists engine state in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertInstance(ctx context.Context, inst Instance, first *Job, firstTask *Task) error {
	dto, err := instanceToDTO(inst)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dto).Error; err != nil {
			if constraint, ok := pgerrs.IsUniqueViolation(err); ok && constraint == activeInstanceConstraint {
				return ErrActiveInstanceExists
			}
			return err
		}
		if first != nil {
			job := jobToDTO(*first)
			if err := tx.Create(&job).Error; err != nil {
				return err
			}
		}
		if firstTask != nil {
			task := taskToDTO(*firstTask)
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) FindActiveInstance(ctx context.Context, processKey, businessKey string) (Instance, error) {
	var dto instanceDTO
	err := s.db.WithContext(ctx).
		Where("process_key = ? AND business_key = ? AND state = ?", processKey, businessKey, ports.InstanceActive).
		First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Instance{}, fmt.Errorf("%w: %s/%s", ports.ErrInstanceNotFound, processKey, businessKey)
	}
	if err != nil {
		return Instance{}, err
	}
	return instanceFromDTO(dto)
}

func (s *GormStore) GetInstance(ctx context.Context, id string) (Instance, error) {
	var dto instanceDTO
	err := s.db.WithContext(ctx).First(&dto, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Instance{}, fmt.Errorf("%w: %s", ports.ErrInstanceNotFound, id)
	}
	if err != nil {
		return Instance{}, err
	}
	return instanceFromDTO(dto)
}

// ClaimDueJobs locks due rows with FOR UPDATE SKIP LOCKED, so concurrent
// claimers on other replicas never get the same job.
func (s *GormStore) ClaimDueJobs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Job, error) {
	var claimed []Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dtos []jobDTO
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("due_at <= ? AND (locked_until IS NULL OR locked_until <= ?)", now, now).
			Order("due_at, id").
			Limit(limit).
			Find(&dtos).Error
		if err != nil || len(dtos) == 0 {
			return err
		}

		lockedUntil := now.Add(lease)
		ids := make([]string, 0, len(dtos))
		for _, d := range dtos {
			ids = append(ids, d.ID)
		}
		if err = tx.Model(&jobDTO{}).Where("id IN ?", ids).Update("locked_until", lockedUntil).Error; err != nil {
			return err
		}

		claimed = make([]Job, 0, len(dtos))
		for _, d := range dtos {
			d.LockedUntil = &lockedUntil
			claimed = append(claimed, jobFromDTO(d))
		}
		return nil
	})
	return claimed, err
}

func (s *GormStore) RescheduleJob(ctx context.Context, jobID string, attempts int, dueAt time.Time, lastError string) error {
	result := s.db.WithContext(ctx).Model(&jobDTO{}).Where("id = ?", jobID).Updates(map[string]any{
		"attempts":     attempts,
		"due_at":       dueAt,
		"locked_until": nil,
		"last_error":   lastError,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (s *GormStore) Advance(ctx context.Context, t Transition) error {
	vars, err := json.Marshal(nonNilVars(t.Instance.Variables))
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.DoneJobID != "" {
			res := tx.Where("id = ?", t.DoneJobID).Delete(&jobDTO{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStaleTransition
			}
		}
		if t.DoneTaskID != "" {
			res := tx.Model(&taskDTO{}).
				Where("id = ? AND completed_at IS NULL", t.DoneTaskID).
				Update("completed_at", t.At)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStaleTransition
			}
		}

		res := tx.Model(&instanceDTO{}).
			Where("id = ? AND state = ?", t.Instance.ID, ports.InstanceActive).
			Updates(map[string]any{
				"state":          string(t.Instance.State),
				"step_index":     t.Instance.StepIndex,
				"current_step":   t.Instance.CurrentStep,
				"variables":      string(vars),
				"failure_reason": t.Instance.FailureReason,
				"ended_at":       t.Instance.EndedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleTransition
		}

		if t.DropPending {
			if err := tx.Where("instance_id = ?", t.Instance.ID).Delete(&jobDTO{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&taskDTO{}).
				Where("instance_id = ? AND completed_at IS NULL", t.Instance.ID).
				Update("completed_at", t.At).Error; err != nil {
				return err
			}
		}
		if t.NextJob != nil {
			job := jobToDTO(*t.NextJob)
			if err := tx.Create(&job).Error; err != nil {
				return err
			}
		}
		if t.NextTask != nil {
			task := taskToDTO(*t.NextTask)
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) GetTask(ctx context.Context, id string) (Task, error) {
	var rows []taskRow
	err := s.openTasks(ctx).Where("t.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return Task{}, err
	}
	if len(rows) == 0 {
		return Task{}, fmt.Errorf("%w: %s", ports.ErrTaskNotFound, id)
	}
	return taskFromRow(rows[0]), nil
}

func (s *GormStore) ListOpenTasks(ctx context.Context, q ports.TaskQuery) ([]Task, error) {
	query := s.openTasks(ctx)
	if q.ProcessInstanceID != "" {
		query = query.Where("t.instance_id = ?", q.ProcessInstanceID)
	}
	if len(q.CandidateGroups) > 0 {
		query = query.Where("t.candidate_group IN ?", q.CandidateGroups)
	}

	var rows []taskRow
	if err := query.Order("t.created_at, t.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, taskFromRow(r))
	}
	return tasks, nil
}

func (s *GormStore) openTasks(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("process_tasks AS t").
		Select("t.*, i.process_key, i.business_key").
		Joins("JOIN process_instances AS i ON i.id = t.instance_id").
		Where("t.completed_at IS NULL")
}

func instanceToDTO(inst Instance) (instanceDTO, error) {
	vars, err := json.Marshal(nonNilVars(inst.Variables))
	if err != nil {
		return instanceDTO{}, err
	}
	return instanceDTO{
		ID:            inst.ID,
		ProcessKey:    inst.ProcessKey,
		BusinessKey:   inst.BusinessKey,
		Category:      inst.Category,
		State:         string(inst.State),
		StepIndex:     inst.StepIndex,
		CurrentStep:   inst.CurrentStep,
		Variables:     string(vars),
		FailureReason: inst.FailureReason,
		StartedAt:     inst.StartedAt,
		EndedAt:       inst.EndedAt,
	}, nil
}

func instanceFromDTO(dto instanceDTO) (Instance, error) {
	vars := ports.Variables{}
	if dto.Variables != "" {
		if err := json.Unmarshal([]byte(dto.Variables), &vars); err != nil {
			return Instance{}, fmt.Errorf("decode variables of %s: %w", dto.ID, err)
		}
	}
	return Instance{
		ID:            dto.ID,
		ProcessKey:    dto.ProcessKey,
		BusinessKey:   dto.BusinessKey,
		Category:      dto.Category,
		State:         ports.InstanceState(dto.State),
		StepIndex:     dto.StepIndex,
		CurrentStep:   dto.CurrentStep,
		Variables:     vars,
		FailureReason: dto.FailureReason,
		StartedAt:     dto.StartedAt,
		EndedAt:       dto.EndedAt,
	}, nil
}

func jobToDTO(j Job) jobDTO {
	return jobDTO{
		ID:          j.ID,
		InstanceID:  j.InstanceID,
		Step:        j.Step,
		Attempts:    j.Attempts,
		DueAt:       j.DueAt,
		LockedUntil: j.LockedUntil,
		LastError:   j.LastError,
	}
}

func jobFromDTO(d jobDTO) Job {
	return Job{
		ID:          d.ID,
		InstanceID:  d.InstanceID,
		Step:        d.Step,
		Attempts:    d.Attempts,
		DueAt:       d.DueAt,
		LockedUntil: d.LockedUntil,
		LastError:   d.LastError,
	}
}

func taskToDTO(t Task) taskDTO {
	return taskDTO{
		ID:             t.ID,
		InstanceID:     t.InstanceID,
		Name:           t.Name,
		CandidateGroup: t.CandidateGroup,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

func taskFromRow(r taskRow) Task {
	return Task{
		ID:             r.ID,
		InstanceID:     r.InstanceID,
		Name:           r.Name,
		CandidateGroup: r.CandidateGroup,
		CreatedAt:      r.CreatedAt,
		CompletedAt:    r.CompletedAt,
		ProcessKey:     r.ProcessKey,
		BusinessKey:    r.BusinessKey,
	}
}

func nonNilVars(v ports.Variables) ports.Variables {
	if v == nil {
		return ports.Variables{}
	}
	return v
}
