package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Pruner deletes records older than a cutoff
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob removes history older than the configured number of days.
// A retention of zero days keeps everything.
type RetentionJob struct {
	pruner Pruner
	days   int
	now    func() time.Time
	log    zerolog.Logger
}

// NewRetentionJob creates a new history retention job
func NewRetentionJob(pruner Pruner, days int, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		pruner: pruner,
		days:   days,
		now:    time.Now,
		log:    log.With().Str("job", "history_retention").Logger(),
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "history_retention"
}

// Run deletes expired records
func (j *RetentionJob) Run() error {
	if j.days <= 0 {
		j.log.Debug().Msg("History retention disabled, nothing to do")
		return nil
	}

	cutoff := j.now().UTC().AddDate(0, 0, -j.days)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("history retention failed: %w", err)
	}

	j.log.Info().
		Int64("deleted", deleted).
		Int("retention_days", j.days).
		Msg("History retention completed")
	return nil
}
