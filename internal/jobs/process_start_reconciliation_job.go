package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

const (
	// ReconciliationGrace leaves a just placed order to its own start attempt.
	ReconciliationGrace     = 30 * time.Second
	reconciliationBatchSize = 50
)

type AwaitingProcessFinder interface {
	Handle(ctx context.Context, query queries.GetOrdersAwaitingProcessQuery) ([]kernel.UUID, error)
}

type ProcessStartHandler interface {
	Handle(ctx context.Context, cmd commands.StartOrderProcessCommand) (string, error)
}

// ProcessStartReconciliationJob starts the process of pending orders whose
// start failed when they were placed.
type ProcessStartReconciliationJob struct {
	finder  AwaitingProcessFinder
	starter ProcessStartHandler
	clock   kernel.Clock
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewProcessStartReconciliationJob(
	finder AwaitingProcessFinder,
	starter ProcessStartHandler,
	clock kernel.Clock,
	logger *slog.Logger,
) *ProcessStartReconciliationJob {
	return &ProcessStartReconciliationJob{
		finder:  finder,
		starter: starter,
		clock:   clock,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "process_start_reconciliation_job"),
	}
}

// Run returns the number of processes it started.
func (j *ProcessStartReconciliationJob) Run(ctx context.Context) int {
	query, err := queries.NewGetOrdersAwaitingProcessQuery(j.clock.Now().Add(-ReconciliationGrace), reconciliationBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Process start reconciliation failed", "error", err)
		return 0
	}
	orderIDs, err := j.finder.Handle(ctx, query)
	if err != nil {
		j.logger.ErrorContext(ctx, "Process start reconciliation failed", "error", err)
		return 0
	}

	started := 0
	for _, id := range orderIDs {
		cmd, cmdErr := commands.NewStartOrderProcessCommand(id)
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Process start reconciliation failed", "order_id", id.String(), "error", cmdErr)
			continue
		}
		ref, startErr := j.starter.Handle(ctx, cmd)
		if startErr != nil {
			j.logger.WarnContext(ctx, "Order process still not started", "order_id", id.String(), "error", startErr)
			continue
		}
		j.logger.InfoContext(ctx, "Order process started by reconciliation",
			"order_id", id.String(),
			"process_instance_id", ref)
		started++
	}
	return started
}

func (j *ProcessStartReconciliationJob) Start() error {
	if _, err := j.cron.AddFunc("*/30 * * * * *", func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Process start reconciliation job started (running every 30 seconds)")
	return nil
}

func (j *ProcessStartReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Process start reconciliation job stopped")
}
