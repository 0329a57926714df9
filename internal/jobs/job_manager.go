package jobs

import "fmt"

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs    []namedJob
	started int
}

type namedJob struct {
	name string
	job  job
}

// NewJobManager creates a job manager for the engine driver, the process
// start reconciliation and the low stock report.
func NewJobManager(
	engineJob *ProcessEngineJob,
	reconciliationJob *ProcessStartReconciliationJob,
	lowStockJob *LowStockReportJob,
) *JobManager {
	return &JobManager{
		jobs: []namedJob{
			{name: "process engine", job: engineJob},
			{name: "process start reconciliation", job: reconciliationJob},
			{name: "low stock report", job: lowStockJob},
		},
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			// Stop already started jobs if this one fails
			for k := i - 1; k >= 0; k-- {
				jm.jobs[k].job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	jm.started = len(jm.jobs)
	return nil
}

// StopAll stops all scheduled jobs gracefully, the engine driver last.
func (jm *JobManager) StopAll() {
	for k := jm.started - 1; k >= 0; k-- {
		jm.jobs[k].job.Stop()
	}
	jm.started = 0
}
