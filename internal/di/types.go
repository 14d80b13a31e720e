// Package di wires databases, repositories, services and jobs into a Container.
package di

import (
	"errors"

	"github.com/aristath/mars-command/internal/database"
	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/history"
	"github.com/aristath/mars-command/internal/modules/robots"
	"github.com/aristath/mars-command/internal/modules/world"
	"github.com/aristath/mars-command/internal/reliability"
	"github.com/aristath/mars-command/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	StateDB   *database.DB // robot positions
	HistoryDB *database.DB // command audit log (ledger profile)

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Repositories
	RobotRepo   *robots.Repository
	HistoryRepo *history.Repository

	// Services
	World          *world.Manager
	RobotService   *robots.Service
	HistoryService *history.Service
	BackupService  *reliability.BackupService
	Scheduler      *scheduler.Scheduler
}

// JobInstances holds the scheduled jobs so they can be triggered manually
type JobInstances struct {
	Maintenance *reliability.MaintenanceJob
	Backup      *reliability.BackupJob
	Retention   *history.RetentionJob
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.StateDB != nil {
		dbs["state"] = c.StateDB
	}
	if c.HistoryDB != nil {
		dbs["history"] = c.HistoryDB
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() error {
	var errs []error
	if c.StateDB != nil {
		errs = append(errs, c.StateDB.Close())
	}
	if c.HistoryDB != nil {
		errs = append(errs, c.HistoryDB.Close())
	}
	return errors.Join(errs...)
}
