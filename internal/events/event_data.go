package events

import (
	"encoding/json"
	"fmt"

	"github.com/aristath/mars-command/internal/domain"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RobotLandedData contains data for RobotLanded events
type RobotLandedData struct {
	RobotID  string          `json:"robotId"`
	Position domain.Position `json:"position"`
	User     string          `json:"user"`
	Session  string          `json:"session"`
}

// EventType returns the event type for RobotLandedData
func (d *RobotLandedData) EventType() EventType {
	return RobotLanded
}

// RobotMovedData contains data for RobotMoved events
type RobotMovedData struct {
	RobotID  string          `json:"robotId"`
	Command  string          `json:"command"`
	Position domain.Position `json:"position"`
	User     string          `json:"user"`
	Session  string          `json:"session"`
}

// EventType returns the event type for RobotMovedData
func (d *RobotMovedData) EventType() EventType {
	return RobotMoved
}

// RobotLostData contains data for RobotLost events
type RobotLostData struct {
	RobotID      string          `json:"robotId"`
	Command      string          `json:"command"`
	LastPosition domain.Position `json:"lastPosition"`
	Axis         string          `json:"axis"`
	User         string          `json:"user"`
	Session      string          `json:"session"`
}

// EventType returns the event type for RobotLostData
func (d *RobotLostData) EventType() EventType {
	return RobotLost
}

// WorldResizedData contains data for WorldResized events
type WorldResizedData struct {
	XMin int `json:"xMin"`
	XMax int `json:"xMax"`
	YMin int `json:"yMin"`
	YMax int `json:"yMax"`
}

// EventType returns the event type for WorldResizedData
func (d *WorldResizedData) EventType() EventType {
	return WorldResized
}

// BackupData contains data for BackupCompleted and BackupFailed events
type BackupData struct {
	Failed    bool     `json:"-"`
	Databases []string `json:"databases,omitempty"`
	Location  string   `json:"location,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// EventType returns BackupFailed when Failed is set, BackupCompleted otherwise
func (d *BackupData) EventType() EventType {
	if d.Failed {
		return BackupFailed
	}
	return BackupCompleted
}

// toMap flattens typed event data into the generic payload carried by Event
func toMap(data EventData) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", data.EventType(), err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s data: %w", data.EventType(), err)
	}
	return out, nil
}
