package handlers

import (
	"encoding/json"
	"strings"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/modules/robots"
)

// robotRequest is the body shared by landRobot, moveRobot and landAndMove.
// Fields stay raw so that wrongly typed values surface as format errors.
type robotRequest struct {
	RobotID     json.RawMessage `json:"robotId"`
	Position    json.RawMessage `json:"position"`
	XPos        json.RawMessage `json:"xPos"`
	YPos        json.RawMessage `json:"yPos"`
	Orientation json.RawMessage `json:"orientation"`
	Command     json.RawMessage `json:"command"`
}

func (req robotRequest) robotID() (string, error) {
	if absent(req.RobotID) {
		return domain.DefaultRobotID, nil
	}
	id, ok := scalar(req.RobotID)
	if !ok {
		return "", &robots.FormatError{Input: string(req.RobotID), Reason: "robotId must be a string or a number"}
	}
	if id == "" {
		return domain.DefaultRobotID, nil
	}
	return id, nil
}

// position accepts either the "x y O" string form or separate xPos, yPos and orientation
func (req robotRequest) position() (domain.Position, error) {
	if !absent(req.Position) {
		var s string
		if err := json.Unmarshal(req.Position, &s); err != nil {
			return domain.Position{}, &robots.FormatError{Input: string(req.Position), Reason: "position must be a string"}
		}
		return robots.ParsePosition(s)
	}

	if absent(req.XPos) || absent(req.YPos) || absent(req.Orientation) {
		return domain.Position{}, &robots.FormatError{Reason: "incomplete parameters, position or (xPos, yPos, orientation) are mandatory"}
	}

	x, okX := scalar(req.XPos)
	y, okY := scalar(req.YPos)
	if !okX || !okY {
		return domain.Position{}, &robots.InvalidCoordinateError{X: string(req.XPos), Y: string(req.YPos)}
	}

	var orientation string
	if err := json.Unmarshal(req.Orientation, &orientation); err != nil {
		return domain.Position{}, &robots.InvalidOrientationError{Orientation: string(req.Orientation)}
	}

	return robots.ValidatePosition(robots.RawPosition{X: x, Y: y, Orientation: orientation})
}

// command returns the movement string. A missing or empty command is rejected.
func (req robotRequest) command() (string, error) {
	if absent(req.Command) {
		return "", &robots.FormatError{Reason: "incomplete parameters, command is mandatory"}
	}
	var s string
	if err := json.Unmarshal(req.Command, &s); err != nil {
		return "", &robots.FormatError{Input: string(req.Command), Reason: "command must be a string"}
	}
	if s == "" {
		return "", &robots.FormatError{Reason: "incomplete parameters, command is mandatory"}
	}
	return s, nil
}

func absent(raw json.RawMessage) bool {
	text := strings.TrimSpace(string(raw))
	return text == "" || text == "null"
}

// scalar returns the text of a JSON string or number
func scalar(raw json.RawMessage) (string, bool) {
	if absent(raw) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
