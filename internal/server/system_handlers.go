package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/mars-command/internal/database"
	"github.com/aristath/mars-command/internal/reliability"
	"github.com/aristath/mars-command/internal/scheduler"
)

// BackupRunner creates a backup on demand
type BackupRunner interface {
	Execute(ctx context.Context) (*reliability.BackupResult, error)
}

// BackupLister lists local backup archives
type BackupLister interface {
	ListBackups() ([]reliability.BackupInfo, error)
}

// JobRunner reports scheduled jobs and runs them on demand
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(name string) error
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	databases   map[string]*database.DB
	jobs        JobRunner
	backups     BackupRunner
	lister      BackupLister
	startupTime time.Time
	systemStats func() (cpuPercent, ramPercent float64)
}

// NewSystemHandlers creates a new system handlers instance.
// backups may be nil, in which case manual backups are unavailable.
func NewSystemHandlers(
	log zerolog.Logger,
	databases map[string]*database.DB,
	jobs JobRunner,
	backups BackupRunner,
	lister BackupLister,
) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		databases:   databases,
		jobs:        jobs,
		backups:     backups,
		lister:      lister,
		startupTime: time.Now(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// DatabaseStatus reports one database in the status response
type DatabaseStatus struct {
	Name  string          `json:"name"`
	Stats *database.Stats `json:"stats,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status      string           `json:"status"`
	UptimeHours float64          `json:"uptime_hours"`
	CPUPercent  float64          `json:"cpu_percent"`
	RAMPercent  float64          `json:"ram_percent"`
	Databases   []DatabaseStatus `json:"databases"`
	Jobs        int              `json:"jobs"`
	Backups     bool             `json:"backups_enabled"`
	CheckedAt   string           `json:"checked_at"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:      "healthy",
		UptimeHours: time.Since(h.startupTime).Hours(),
		CPUPercent:  cpuPercent,
		RAMPercent:  ramPercent,
		Databases:   make([]DatabaseStatus, 0, len(h.databases)),
		Backups:     h.backups != nil,
		CheckedAt:   time.Now().Format(time.RFC3339),
	}

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := DatabaseStatus{Name: name}
		stats, err := h.databases[name].GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			entry.Error = err.Error()
			response.Status = "degraded"
		} else {
			entry.Stats = stats
		}
		response.Databases = append(response.Databases, entry)
	}

	if h.jobs != nil {
		response.Jobs = len(h.jobs.Jobs())
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "job not found: " + name})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run requested")

	start := time.Now()
	if err := h.jobs.Trigger(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "job not found: " + name})
			return
		}
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "job failed: " + err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "job completed",
		"job":      name,
		"duration": time.Since(start).String(),
	})
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"backups": []reliability.BackupInfo{}, "count": 0})
		return
	}

	backups, err := h.lister.ListBackups()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to list backups"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// HandleRunBackup handles POST /api/system/backup
func (h *SystemHandlers) HandleRunBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "backups are not configured"})
		return
	}

	h.log.Info().Msg("Manual backup requested")

	result, err := h.backups.Execute(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		// A result alongside the error means the archive exists locally but the upload failed
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"message": "backup failed: " + err.Error(),
			"backup":  result,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "backup created",
		"backup":  result,
	})
}

// getSystemStats calculates CPU and RAM usage percentages.
// The 100ms CPU sample keeps the status call fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
