// Package history keeps the per-session audit log of land and move commands.
package history

import (
	"time"

	"github.com/aristath/mars-command/internal/domain"
)

// Record is one accepted command. Origin is the position the robot held
// before the command ran (the landing position for LandCommand records).
type Record struct {
	ID        string          `json:"id" msgpack:"id"`
	Session   string          `json:"session" msgpack:"session"`
	RobotID   string          `json:"robotId" msgpack:"robotId"`
	Origin    domain.Position `json:"origin" msgpack:"origin"`
	Command   string          `json:"command" msgpack:"command"`
	User      string          `json:"user" msgpack:"user"`
	Timestamp time.Time       `json:"timestamp" msgpack:"timestamp"`
}

// SessionSummary describes one session in the log
type SessionSummary struct {
	Session   string    `json:"session" msgpack:"session"`
	Records   int       `json:"records" msgpack:"records"`
	FirstSeen time.Time `json:"firstSeen" msgpack:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen" msgpack:"lastSeen"`
}
