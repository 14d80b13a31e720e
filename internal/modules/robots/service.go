// Package robots implements landing, moving and locating robots on the grid.
package robots

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/modules/world"
)

// LandCommand is the history marker recorded for landings
const LandCommand = "--LAND"

// BoundsProvider exposes the current world extent
type BoundsProvider interface {
	Bounds() world.Bounds
}

// Service is the movement engine. It validates inputs, applies commands one
// step at a time and persists every successful step before attempting the
// next, so a lost robot keeps its last valid position.
type Service struct {
	store   domain.RobotStateStore
	bounds  BoundsProvider
	history domain.CommandRecorder
	locks   *keyedMutex
}

// NewService creates the movement engine. history may be nil.
func NewService(store domain.RobotStateStore, bounds BoundsProvider, history domain.CommandRecorder) *Service {
	return &Service{
		store:   store,
		bounds:  bounds,
		history: history,
		locks:   newKeyedMutex(),
	}
}

// Position returns the stored position of robotID
func (s *Service) Position(ctx context.Context, robotID string) (domain.Position, error) {
	return s.store.Get(ctx, normalizeID(robotID))
}

// Land places a validated position on the grid and records the landing.
// Nothing is stored when the position lies outside the bounds.
func (s *Service) Land(ctx context.Context, robotID string, pos domain.Position, caller domain.Caller) (domain.Position, error) {
	robotID = normalizeID(robotID)

	unlock := s.locks.Lock(robotID)
	defer unlock()

	if err := s.land(ctx, robotID, pos); err != nil {
		return domain.Position{}, err
	}

	if err := s.record(ctx, caller, robotID, pos, LandCommand); err != nil {
		return pos, err
	}
	return pos, nil
}

// Move validates commands and runs them against the stored position of robotID
func (s *Service) Move(ctx context.Context, robotID string, commands string, caller domain.Caller) (domain.Position, error) {
	cmd, err := ValidateCommand(commands)
	if err != nil {
		return domain.Position{}, err
	}

	robotID = normalizeID(robotID)

	unlock := s.locks.Lock(robotID)
	defer unlock()

	return s.move(ctx, robotID, cmd, caller)
}

// LandAndMove validates both inputs, then lands the robot and runs the commands
func (s *Service) LandAndMove(ctx context.Context, robotID string, pos domain.Position, commands string, caller domain.Caller) (domain.Position, error) {
	cmd, err := ValidateCommand(commands)
	if err != nil {
		return domain.Position{}, err
	}

	robotID = normalizeID(robotID)

	unlock := s.locks.Lock(robotID)
	defer unlock()

	if err := s.land(ctx, robotID, pos); err != nil {
		return domain.Position{}, err
	}
	if err := s.record(ctx, caller, robotID, pos, LandCommand); err != nil {
		return pos, err
	}

	return s.move(ctx, robotID, cmd, caller)
}

func (s *Service) land(ctx context.Context, robotID string, pos domain.Position) error {
	if axis, outside := s.bounds.Bounds().Outside(pos.X, pos.Y); outside {
		return &OutOfWorldError{
			RobotID:   robotID,
			Axis:      axis,
			Candidate: pos,
			Landing:   true,
		}
	}

	if err := s.store.Set(ctx, robotID, pos); err != nil {
		return fmt.Errorf("failed to store landing position: %w", err)
	}
	return nil
}

func (s *Service) move(ctx context.Context, robotID string, cmd domain.Command, caller domain.Caller) (domain.Position, error) {
	origin, err := s.store.Get(ctx, robotID)
	if err != nil {
		return domain.Position{}, err
	}

	final, applied, runErr := s.run(ctx, robotID, origin, cmd)

	// The audit trail gets every attempt that completed, lost the robot or
	// left persisted steps behind before failing.
	if runErr == nil || applied > 0 || errors.Is(runErr, ErrOutOfWorld) {
		if err := s.record(ctx, caller, robotID, origin, string(cmd)); err != nil {
			return final, errors.Join(runErr, err)
		}
	}
	return final, runErr
}

// run applies cmd step by step. The returned position is always the last one
// written to the store; applied counts the steps written.
func (s *Service) run(ctx context.Context, robotID string, current domain.Position, cmd domain.Command) (domain.Position, int, error) {
	for i := 0; i < len(cmd); i++ {
		if err := ctx.Err(); err != nil {
			return current, i, err
		}

		next := Step(current, cmd[i])

		if cmd[i] == domain.Forward {
			if axis, outside := s.bounds.Bounds().Outside(next.X, next.Y); outside {
				return current, i, &OutOfWorldError{
					RobotID:   robotID,
					Axis:      axis,
					Last:      current,
					Candidate: next,
					Step:      i,
				}
			}
		}

		if err := s.store.Set(ctx, robotID, next); err != nil {
			return current, i, fmt.Errorf("failed to store step %d: %w", i, err)
		}
		current = next
	}
	return current, len(cmd), nil
}

func (s *Service) record(ctx context.Context, caller domain.Caller, robotID string, origin domain.Position, command string) error {
	if s.history == nil {
		return nil
	}
	if err := s.history.RecordCommand(ctx, caller, robotID, origin, command); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

func normalizeID(robotID string) string {
	if robotID == "" {
		return domain.DefaultRobotID
	}
	return robotID
}
