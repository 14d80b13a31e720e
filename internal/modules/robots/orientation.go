package robots

import (
	"github.com/aristath/mars-command/internal/domain"
)

// Headings in degrees, clockwise from North
var degreesFor = map[domain.Orientation]int{
	domain.North: 0,
	domain.East:  90,
	domain.South: 180,
	domain.West:  270,
}

// HeadingFor maps any angle to the nearest cardinal orientation
func HeadingFor(degrees int) domain.Orientation {
	d := ((degrees % 360) + 360) % 360
	switch {
	case d >= 315 || d < 45:
		return domain.North
	case d < 135:
		return domain.East
	case d < 225:
		return domain.South
	default:
		return domain.West
	}
}

// Turn returns the orientation after applying a single command.
// F leaves the orientation unchanged.
func Turn(o domain.Orientation, cmd byte) domain.Orientation {
	deg := degreesFor[o]
	switch cmd {
	case domain.TurnLeft:
		deg -= 90
	case domain.TurnRight:
		deg += 90
	}
	return HeadingFor(deg)
}

// Step applies one command to p without any bounds check
func Step(p domain.Position, cmd byte) domain.Position {
	next := domain.Position{X: p.X, Y: p.Y, Orientation: Turn(p.Orientation, cmd)}
	if cmd != domain.Forward {
		return next
	}

	switch next.Orientation {
	case domain.North:
		next.Y++
	case domain.South:
		next.Y--
	case domain.East:
		next.X++
	case domain.West:
		next.X--
	}
	return next
}
