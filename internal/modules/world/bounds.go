// Package world owns the rectangular extent of the simulated surface.
package world

import (
	"strconv"
	"strings"
	"sync"
)

// Axis identifies the grid axis a bounds check failed on
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Bounds is the inclusive extent of the grid
type Bounds struct {
	XMin int `json:"xMin"`
	XMax int `json:"xMax"`
	YMin int `json:"yMin"`
	YMax int `json:"yMax"`
}

// Outside reports whether (x, y) lies beyond the bounds and on which axis.
// The x axis is checked first.
func (b Bounds) Outside(x, y int) (Axis, bool) {
	if x > b.XMax || x < b.XMin {
		return AxisX, true
	}
	if y > b.YMax || y < b.YMin {
		return AxisY, true
	}
	return "", false
}

// Manager holds the process-wide bounds. The zero grid {0,0,0,0} is a
// single cell until resized.
type Manager struct {
	mu     sync.RWMutex
	bounds Bounds
}

// NewManager creates a manager with the degenerate initial grid
func NewManager() *Manager {
	return &Manager{}
}

// Bounds returns a copy of the current bounds
func (m *Manager) Bounds() Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds
}

// SetMax parses xMax and yMax as integers and replaces the upper bounds.
// Minimums stay fixed; a maximum below its minimum is rejected and the
// bounds are left unchanged.
func (m *Manager) SetMax(xMax, yMax string) (Bounds, error) {
	x, errX := strconv.Atoi(strings.TrimSpace(xMax))
	y, errY := strconv.Atoi(strings.TrimSpace(yMax))
	if errX != nil || errY != nil {
		return m.Bounds(), &InvalidSizeError{XMax: xMax, YMax: yMax, Reason: "xMax and yMax must be integers"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if x < m.bounds.XMin {
		return m.bounds, &InvalidSizeError{XMax: xMax, YMax: yMax, Reason: "xMax is below xMin"}
	}
	if y < m.bounds.YMin {
		return m.bounds, &InvalidSizeError{XMax: xMax, YMax: yMax, Reason: "yMax is below yMin"}
	}

	m.bounds.XMax = x
	m.bounds.YMax = y
	return m.bounds, nil
}

// ParseSize splits the "xMax yMax" command form of a resize request
func ParseSize(command string) (xMax, yMax string, err error) {
	parts := strings.Split(command, " ")
	if len(parts) != 2 {
		return "", "", &InvalidSizeError{Reason: "invalid number of arguments, (xMax yMax) expected"}
	}
	return parts[0], parts[1], nil
}
