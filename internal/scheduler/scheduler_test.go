package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	return j.name
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{name: "maintenance"}))
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "backup"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "backup", jobs[0].Name)
	assert.Equal(t, "@hourly", jobs[0].Schedule)
	assert.Equal(t, "maintenance", jobs[1].Name)
}

func TestScheduler_AddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{name: "bad"})
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "now"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())

	failing := &countingJob{name: "failing", err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(failing), "boom")
}

func TestScheduler_Trigger(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		trigger  string
		wantErr  error
		wantRuns int32
	}{
		{name: "registered job", trigger: "backup", wantRuns: 1},
		{name: "failing job", trigger: "maintenance", wantErr: boom},
		{name: "unknown job", trigger: "retention", wantErr: ErrJobNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(zerolog.Nop())
			backup := &countingJob{name: "backup"}
			maintenance := &countingJob{name: "maintenance", err: boom}
			require.NoError(t, s.AddJob("0 0 3 * * *", backup))
			require.NoError(t, s.AddJob("0 0 4 * * *", maintenance))

			err := s.Trigger(tt.trigger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRuns, backup.runs.Load())
		})
	}
}

func TestScheduler_RunsScheduledJobs(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].Next.IsZero())
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "flaky", err: errors.New("transient")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, 4*time.Second, 50*time.Millisecond)
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 0 3 * * *", true},
		{"0 30 3 * * *", true},
		{"@daily", true},
		{"@every 10m", true},
		{"0 3 * * *", false},
		{"", false},
		{"sometimes", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
