package history

import (
	"context"
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/google/uuid"
)

// Store is the persistence used by Service
type Store interface {
	Append(ctx context.Context, session string, rec Record) error
	List(ctx context.Context, session string) ([]Record, error)
	Sessions(ctx context.Context) ([]SessionSummary, error)
}

// Service turns robot commands into history records.
// It implements domain.CommandRecorder.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a history service backed by store
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// RecordCommand appends a record for command to the caller's session
func (s *Service) RecordCommand(ctx context.Context, caller domain.Caller, robotID string, origin domain.Position, command string) error {
	at := caller.At
	if at.IsZero() {
		at = s.now()
	}

	session := caller.Session
	if session == "" {
		session = domain.SessionForDate(at)
	}

	return s.store.Append(ctx, session, Record{
		ID:        uuid.NewString(),
		Session:   session,
		RobotID:   robotID,
		Origin:    origin,
		Command:   command,
		User:      caller.User,
		Timestamp: at.UTC(),
	})
}

// Session returns the records of one session in the order they were accepted
func (s *Service) Session(ctx context.Context, session string) ([]Record, error) {
	return s.store.List(ctx, session)
}

// Sessions lists every known session
func (s *Service) Sessions(ctx context.Context) ([]SessionSummary, error) {
	return s.store.Sessions(ctx)
}
