package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DueJobRunner executes the engine jobs that are due.
type DueJobRunner interface {
	RunDueJobs(ctx context.Context) (int, error)
}

// ProcessEngineJob drives the process engine: every second it executes the
// automated steps that are due. A run still in progress skips the next tick.
type ProcessEngineJob struct {
	engine DueJobRunner
	cron   *cron.Cron
	logger *slog.Logger
}

func NewProcessEngineJob(engine DueJobRunner, logger *slog.Logger) *ProcessEngineJob {
	return &ProcessEngineJob{
		engine: engine,
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "process_engine_job"),
	}
}

// Run executes one batch of due engine jobs.
func (j *ProcessEngineJob) Run(ctx context.Context) {
	n, err := j.engine.RunDueJobs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Process engine job failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.DebugContext(ctx, "Process engine jobs executed", "count", n)
	}
}

func (j *ProcessEngineJob) Start() error {
	if _, err := j.cron.AddFunc("* * * * * *", func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Process engine job started (running every second)")
	return nil
}

// Stop waits for a running batch to finish.
func (j *ProcessEngineJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Process engine job stopped")
}
