package testing

import (
	"context"
	"sync"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/modules/robots"
)

// MockStateStore is an in-memory RobotStateStore that records every write
type MockStateStore struct {
	mu        sync.Mutex
	positions map[string]domain.Position
	writes    []domain.Position
	setErr    error
	failAfter int // fail Set once this many writes succeeded, when setErr is set
}

// NewMockStateStore creates an empty store
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{positions: make(map[string]domain.Position)}
}

// Get returns the stored position or a robots.RobotNotFoundError
func (m *MockStateStore) Get(ctx context.Context, robotID string) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[robotID]
	if !ok {
		return domain.Position{}, &robots.RobotNotFoundError{RobotID: robotID}
	}
	return pos, nil
}

// Set stores pos unless a failure has been injected
func (m *MockStateStore) Set(ctx context.Context, robotID string, pos domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setErr != nil && len(m.writes) >= m.failAfter {
		return m.setErr
	}
	m.positions[robotID] = pos
	m.writes = append(m.writes, pos)
	return nil
}

// Put seeds a position without counting it as a write
func (m *MockStateStore) Put(robotID string, pos domain.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[robotID] = pos
}

// FailSetAfter makes Set return err once n writes have succeeded
func (m *MockStateStore) FailSetAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.setErr = err
}

// Writes returns every position written through Set, in order
func (m *MockStateStore) Writes() []domain.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Position, len(m.writes))
	copy(out, m.writes)
	return out
}

// RecordedCommand is one call captured by MockRecorder
type RecordedCommand struct {
	Caller  domain.Caller
	RobotID string
	Origin  domain.Position
	Command string
}

// MockRecorder captures history records in memory
type MockRecorder struct {
	mu      sync.Mutex
	records []RecordedCommand
	err     error
}

// NewMockRecorder creates an empty recorder
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

// RecordCommand captures the call or returns the injected error
func (m *MockRecorder) RecordCommand(ctx context.Context, caller domain.Caller, robotID string, origin domain.Position, command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, RecordedCommand{
		Caller:  caller,
		RobotID: robotID,
		Origin:  origin,
		Command: command,
	})
	return nil
}

// SetError makes every subsequent RecordCommand fail with err
func (m *MockRecorder) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Records returns the captured calls
func (m *MockRecorder) Records() []RecordedCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedCommand, len(m.records))
	copy(out, m.records)
	return out
}
