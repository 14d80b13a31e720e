package reliability

import (
	"context"
	"time"

	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/utils"
	"github.com/rs/zerolog"
)

// BackupJob runs BackupService on a schedule and publishes the outcome
type BackupJob struct {
	service      *BackupService
	eventManager *events.Manager
	timeout      time.Duration
	log          zerolog.Logger
}

// NewBackupJob creates a new backup job. eventManager may be nil.
func NewBackupJob(service *BackupService, eventManager *events.Manager, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:      service,
		eventManager: eventManager,
		timeout:      10 * time.Minute,
		log:          log.With().Str("job", "database_backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "database_backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.Execute(ctx)
	return err
}

// Execute runs one backup with the caller's context
func (j *BackupJob) Execute(ctx context.Context) (*BackupResult, error) {
	defer utils.OperationTimer("database_backup", 5*time.Minute, j.log)()

	result, err := j.service.CreateBackup(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		j.emit(&events.BackupData{
			Failed:    true,
			Databases: j.service.DatabaseNames(),
			Error:     err.Error(),
		})
		return result, err
	}

	location := result.Path
	if result.Remote != "" {
		location = result.Remote
	}
	j.emit(&events.BackupData{
		Databases: j.service.DatabaseNames(),
		Location:  location,
	})
	return result, nil
}

func (j *BackupJob) emit(data *events.BackupData) {
	if j.eventManager == nil {
		return
	}
	j.eventManager.EmitTyped("reliability", data)
}
