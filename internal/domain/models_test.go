package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientation_Valid(t *testing.T) {
	for _, o := range Orientations {
		assert.True(t, o.Valid(), "orientation %s should be valid", o)
	}
	assert.False(t, Orientation("X").Valid())
	assert.False(t, Orientation("n").Valid())
	assert.False(t, Orientation("").Valid())
}

func TestPosition_String(t *testing.T) {
	p := Position{X: 3, Y: -1, Orientation: West}
	assert.Equal(t, "3 -1 W", p.String())
}

func TestPosition_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Position{X: 1, Y: 2, Orientation: East})
	require.NoError(t, err)
	assert.JSONEq(t, `{"xPos":1,"yPos":2,"orientation":"E"}`, string(data))
}

func TestSessionForDate(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60))
	assert.Equal(t, "2024-03-10", SessionForDate(at))
}
