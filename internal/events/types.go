// Package events carries robot and world notifications from the HTTP
// handlers to live subscribers such as the websocket stream.
package events

import "time"

// EventType identifies what happened
type EventType string

const (
	// RobotLanded is emitted after a robot is placed on the grid
	RobotLanded EventType = "ROBOT_LANDED"
	// RobotMoved is emitted after a command string ran to completion
	RobotMoved EventType = "ROBOT_MOVED"
	// RobotLost is emitted when a forward step would leave the grid
	RobotLost EventType = "ROBOT_LOST"
	// WorldResized is emitted when the grid bounds change
	WorldResized EventType = "WORLD_RESIZED"
	// BackupCompleted is emitted after a database backup finished
	BackupCompleted EventType = "BACKUP_COMPLETED"
	// BackupFailed is emitted when a database backup could not be taken or uploaded
	BackupFailed EventType = "BACKUP_FAILED"
)

// AllTypes lists every event type in emission order of importance
var AllTypes = []EventType{
	RobotLanded,
	RobotMoved,
	RobotLost,
	WorldResized,
	BackupCompleted,
	BackupFailed,
}

// Event is a single notification
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
