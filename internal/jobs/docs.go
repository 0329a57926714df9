// Package jobs provides the scheduled background tasks of the order service.
//
// Jobs use github.com/robfig/cron/v3 with second resolution.
//
// # Available Jobs
//
// 1. ProcessEngineJob - every second, executes the due automated steps of the process engine
// 2. ProcessStartReconciliationJob - every 30 seconds, starts processes of orders whose start failed at placement
// 3. LowStockReportJob - every 5 minutes, logs items at or below their reorder level
//
// # Usage
//
//	jobManager := jobs.NewJobManager(engineJob, reconciliationJob, lowStockJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Jobs log failures and keep their schedule. The engine and reconciliation
// jobs skip a tick while the previous run is still in progress.
package jobs
