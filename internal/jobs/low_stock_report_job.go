package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

type LowStockFinder interface {
	Handle(ctx context.Context, query queries.GetLowStockQuery) ([]queries.LowStockView, error)
}

// LowStockReportJob logs every item at or below its reorder level.
type LowStockReportJob struct {
	finder LowStockFinder
	cron   *cron.Cron
	logger *slog.Logger
}

func NewLowStockReportJob(finder LowStockFinder, logger *slog.Logger) *LowStockReportJob {
	return &LowStockReportJob{
		finder: finder,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "low_stock_report_job"),
	}
}

func (j *LowStockReportJob) Run(ctx context.Context) {
	rows, err := j.finder.Handle(ctx, queries.NewGetLowStockQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Low stock report failed", "error", err)
		return
	}
	for _, r := range rows {
		j.logger.WarnContext(ctx, "Item below reorder level",
			"sku", r.SKU,
			"name", r.Name,
			"available", r.Available,
			"reorder_level", r.ReorderLevel,
			"reorder_quantity", r.ReorderQuantity)
	}
}

func (j *LowStockReportJob) Start() error {
	if _, err := j.cron.AddFunc("0 */5 * * * *", func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Low stock report job started (running every 5 minutes)")
	return nil
}

func (j *LowStockReportJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Low stock report job stopped")
}
