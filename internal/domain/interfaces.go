package domain

import "context"

// RobotStateStore keeps the current position of every robot, keyed by robot id.
// Get fails with a not-found error for ids that never landed.
type RobotStateStore interface {
	Get(ctx context.Context, robotID string) (Position, error)
	Set(ctx context.Context, robotID string, pos Position) error
}

// CommandRecorder appends land/move transitions to the per-session audit log
type CommandRecorder interface {
	RecordCommand(ctx context.Context, caller Caller, robotID string, origin Position, command string) error
}
