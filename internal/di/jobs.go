package di

import (
	"fmt"

	"github.com/aristath/mars-command/internal/config"
	"github.com/aristath/mars-command/internal/modules/history"
	"github.com/aristath/mars-command/internal/reliability"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and schedules them.
// The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{}

	jobs.Retention = history.NewRetentionJob(container.HistoryRepo, cfg.HistoryRetentionDays, log)
	jobs.Maintenance = reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log, jobs.Retention)
	jobs.Backup = reliability.NewBackupJob(container.BackupService, container.EventManager, log)

	if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, jobs.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}
	if err := container.Scheduler.AddJob(cfg.BackupSchedule, jobs.Backup); err != nil {
		return nil, fmt.Errorf("failed to register backup job: %w", err)
	}

	return jobs, nil
}
