// Package scheduler runs maintenance jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrJobNotFound is returned by Trigger for a name no job was registered under
var ErrJobNotFound = errors.New("job not found")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobInfo describes a registered job
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

type registration struct {
	job      Job
	schedule string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.RWMutex
	jobs map[cron.EntryID]registration
}

// New creates a new scheduler. Schedules use six fields (with seconds).
// A run that is still going when its next tick fires causes that tick to be skipped.
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:  l,
		jobs: make(map[cron.EntryID]registration),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 0 3 * * *"   - Every day at 03:00
//   - "@hourly"       - Every hour
//   - "@every 30s"    - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		s.execute(job)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.jobs[id] = registration{job: job, schedule: schedule}
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// Trigger runs the registered job called name immediately and returns its error
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	var job Job
	for _, reg := range s.jobs {
		if reg.job.Name() == name {
			job = reg.job
			break
		}
	}
	s.mu.RUnlock()

	if job == nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.RunNow(job)
}

// Jobs lists registered jobs ordered by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, entry := range s.cron.Entries() {
		reg, ok := s.jobs[entry.ID]
		if !ok {
			continue
		}
		infos = append(infos, JobInfo{
			Name:     reg.job.Name(),
			Schedule: reg.schedule,
			Next:     entry.Next,
			Prev:     entry.Prev,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (s *Scheduler) execute(job Job) {
	start := time.Now()
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return
	}

	s.log.Debug().
		Str("job", job.Name()).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
}

// ValidateSchedule reports whether schedule is accepted by AddJob
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	_, err := parser.Parse(schedule)
	return err
}
