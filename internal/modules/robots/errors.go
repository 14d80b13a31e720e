package robots

import (
	"errors"
	"fmt"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/modules/world"
)

var (
	// ErrFormat is returned when a raw input has the wrong shape (token count, type).
	ErrFormat = errors.New("invalid format")

	// ErrInvalidCoordinate is returned when x or y is not an integer.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidOrientation is returned when the orientation is not N, E, S or W.
	ErrInvalidOrientation = errors.New("invalid orientation")

	// ErrInvalidMovement is returned when a command contains a character outside L, R, F.
	ErrInvalidMovement = errors.New("invalid movement")

	// ErrRobotNotFound is returned when a robot id has no stored position.
	ErrRobotNotFound = errors.New("robot not found")

	// ErrOutOfWorld is returned when a position falls outside the world bounds.
	ErrOutOfWorld = errors.New("robot out of world")
)

// FormatError reports malformed raw input
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// InvalidCoordinateError reports an x or y value that is not an integer
type InvalidCoordinateError struct {
	X string
	Y string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("position for x or y axis is invalid [%s, %s]", e.X, e.Y)
}

func (e *InvalidCoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// InvalidOrientationError reports an orientation outside {N, E, S, W}
type InvalidOrientationError struct {
	Orientation string
}

func (e *InvalidOrientationError) Error() string {
	return fmt.Sprintf("orientation invalid: %q", e.Orientation)
}

func (e *InvalidOrientationError) Is(target error) bool {
	return target == ErrInvalidOrientation
}

// InvalidMovementError names the first offending command character.
// Index counts characters from zero, not bytes.
type InvalidMovementError struct {
	Char  rune
	Index int
}

func (e *InvalidMovementError) Error() string {
	return fmt.Sprintf("invalid movement detected: %c (at %d)", e.Char, e.Index)
}

func (e *InvalidMovementError) Is(target error) bool {
	return target == ErrInvalidMovement
}

// RobotNotFoundError names the robot id that has never landed
type RobotNotFoundError struct {
	RobotID string
}

func (e *RobotNotFoundError) Error() string {
	return fmt.Sprintf("robot not found: %s", e.RobotID)
}

func (e *RobotNotFoundError) Is(target error) bool {
	return target == ErrRobotNotFound
}

// OutOfWorldError carries what a caller needs to report a lost robot.
// Last is the position the store still holds; Candidate is the rejected one.
// Landing is set when the rejected position was a landing request, in which
// case nothing was stored and Last is the zero value.
type OutOfWorldError struct {
	RobotID   string
	Axis      world.Axis
	Last      domain.Position
	Candidate domain.Position
	Step      int
	Landing   bool
}

func (e *OutOfWorldError) Error() string {
	return fmt.Sprintf("robot out of world in %s-axis", e.Axis)
}

func (e *OutOfWorldError) Is(target error) bool {
	return target == ErrOutOfWorld
}
