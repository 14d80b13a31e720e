package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/mars-command/internal/config"
	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/history"
	"github.com/aristath/mars-command/internal/modules/robots"
	"github.com/aristath/mars-command/internal/modules/world"
	"github.com/aristath/mars-command/internal/reliability"
	"github.com/aristath/mars-command/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates the services. Repositories must already exist.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.World = world.NewManager()
	container.HistoryService = history.NewService(container.HistoryRepo)
	container.RobotService = robots.NewService(container.RobotRepo, container.World, container.HistoryService)

	var uploader reliability.Uploader
	if cfg.RemoteBackupEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create backup client: %w", err)
		}
		uploader = client
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Remote backups enabled")
	}
	container.BackupService = reliability.NewBackupService(container.Databases(), cfg.BackupDir(), uploader, log)

	container.Scheduler = scheduler.New(log)

	return nil
}
