package reliability

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/mars-command/internal/database"
	"github.com/aristath/mars-command/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	// free space below which maintenance reports failure
	minFreeBytes = 500 * 1024 * 1024
	slowStep     = 30 * time.Second
)

// Step is an extra task run at the end of maintenance
type Step interface {
	Run() error
	Name() string
}

// MaintenanceJob checks integrity, truncates WAL files, checks disk space
// and runs the configured extra steps (history retention).
type MaintenanceJob struct {
	databases map[string]*database.DB
	dataDir   string
	steps     []Step
	diskUsage func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(databases map[string]*database.DB, dataDir string, log zerolog.Logger, steps ...Step) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		steps:     steps,
		diskUsage: disk.Usage,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job. Integrity failures and critically low
// disk space are returned as errors; checkpoint failures are only logged.
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")

	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db := j.databases[name]

		var result string
		if err := db.Conn().QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
			return fmt.Errorf("integrity check of %s failed: %w", name, err)
		}
		if result != "ok" {
			j.log.Error().Str("database", name).Str("result", result).Msg("Database integrity check failed")
			return fmt.Errorf("integrity check of %s reported: %s", name, result)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}

		if stats, err := db.GetStats(); err == nil {
			j.log.Info().
				Str("database", name).
				Int64("size_bytes", stats.SizeBytes).
				Int64("wal_size_bytes", stats.WALSizeBytes).
				Msg("Database metrics")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	for _, step := range j.steps {
		timer := utils.NewTimer(step.Name(), slowStep, j.log)
		err := step.Run()
		timer.Stop()
		if err != nil {
			return fmt.Errorf("maintenance step %s failed: %w", step.Name(), err)
		}
	}

	j.log.Info().Int("databases", len(names)).Msg("Maintenance completed")
	return nil
}

func (j *MaintenanceJob) checkDiskSpace() error {
	usage, err := j.diskUsage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read disk usage")
		return nil
	}

	j.log.Debug().
		Uint64("free_bytes", usage.Free).
		Float64("used_percent", usage.UsedPercent).
		Msg("Disk space check")

	if usage.Free < minFreeBytes {
		return fmt.Errorf("only %d MB free on %s", usage.Free/1024/1024, j.dataDir)
	}
	return nil
}
