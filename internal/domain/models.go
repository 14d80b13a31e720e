// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"time"
)

// DefaultRobotID is used when the caller does not name a robot
const DefaultRobotID = "default"

// Orientation is the cardinal direction a robot is facing
type Orientation string

const (
	North Orientation = "N"
	East  Orientation = "E"
	South Orientation = "S"
	West  Orientation = "W"
)

// Orientations lists the valid orientations in clockwise order starting at North
var Orientations = []Orientation{North, East, South, West}

// Valid reports whether o is one of the four cardinal values
func (o Orientation) Valid() bool {
	switch o {
	case North, East, South, West:
		return true
	}
	return false
}

// Movement commands
const (
	TurnLeft  byte = 'L'
	TurnRight byte = 'R'
	Forward   byte = 'F'
)

// Command is a validated sequence of movement characters over {L, R, F}.
// The zero value is a valid empty sequence.
type Command string

// Position is a robot's location on the grid and the direction it faces
type Position struct {
	X           int         `json:"xPos" msgpack:"xPos"`
	Y           int         `json:"yPos" msgpack:"yPos"`
	Orientation Orientation `json:"orientation" msgpack:"orientation"`
}

// String renders the position in the "x y O" command-line form
func (p Position) String() string {
	return fmt.Sprintf("%d %d %s", p.X, p.Y, p.Orientation)
}

// Caller carries the identity and clock of the request that triggered an
// operation. The API boundary fills it in; the core never derives it.
type Caller struct {
	User    string
	Session string
	At      time.Time
}

// SessionForDate returns the default session key for t (the UTC calendar day)
func SessionForDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
