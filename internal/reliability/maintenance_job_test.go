package reliability

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStep struct {
	runs int
	err  error
}

func (m *mockStep) Run() error {
	m.runs++
	return m.err
}

func (m *mockStep) Name() string {
	return "mock_step"
}

func plentyOfSpace(path string) (*disk.UsageStat, error) {
	return &disk.UsageStat{Path: path, Free: 50 * 1024 * 1024 * 1024, UsedPercent: 10}, nil
}

func TestMaintenanceJob_Name(t *testing.T) {
	job := NewMaintenanceJob(nil, t.TempDir(), zerolog.Nop())
	assert.Equal(t, "maintenance", job.Name())
}

func TestMaintenanceJob_Run(t *testing.T) {
	step := &mockStep{}
	job := NewMaintenanceJob(setupDatabases(t), t.TempDir(), zerolog.Nop(), step)
	job.diskUsage = plentyOfSpace

	require.NoError(t, job.Run())
	assert.Equal(t, 1, step.runs)
}

func TestMaintenanceJob_StepFailure(t *testing.T) {
	step := &mockStep{err: errors.New("locked")}
	job := NewMaintenanceJob(setupDatabases(t), t.TempDir(), zerolog.Nop(), step)
	job.diskUsage = plentyOfSpace

	err := job.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, step.err)
	assert.Contains(t, err.Error(), "mock_step")
}

func TestMaintenanceJob_DiskSpace(t *testing.T) {
	tests := []struct {
		name    string
		usage   func(string) (*disk.UsageStat, error)
		wantErr bool
	}{
		{"plenty", plentyOfSpace, false},
		{
			"critically low",
			func(path string) (*disk.UsageStat, error) {
				return &disk.UsageStat{Free: 10 * 1024 * 1024}, nil
			},
			true,
		},
		{
			"unreadable is not fatal",
			func(path string) (*disk.UsageStat, error) {
				return nil, errors.New("statfs failed")
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := &mockStep{}
			job := NewMaintenanceJob(setupDatabases(t), t.TempDir(), zerolog.Nop(), step)
			job.diskUsage = tt.usage

			err := job.Run()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 0, step.runs, "steps are skipped when disk is critically low")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, step.runs)
			}
		})
	}
}
