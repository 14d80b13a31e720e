package robots

import (
	"errors"
	"testing"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Position
		wantErr error
	}{
		{"north", "3 4 N", domain.Position{X: 3, Y: 4, Orientation: domain.North}, nil},
		{"negative coordinates", "-2 -7 W", domain.Position{X: -2, Y: -7, Orientation: domain.West}, nil},
		{"zero east", "0 0 E", domain.Position{X: 0, Y: 0, Orientation: domain.East}, nil},
		{"too few tokens", "3 4", domain.Position{}, ErrFormat},
		{"too many tokens", "3 4 N F", domain.Position{}, ErrFormat},
		{"double space", "3  4 N", domain.Position{}, ErrFormat},
		{"empty", "", domain.Position{}, ErrFormat},
		{"bad x", "a 4 N", domain.Position{}, ErrInvalidCoordinate},
		{"bad y", "3 4.5 N", domain.Position{}, ErrInvalidCoordinate},
		{"bad orientation", "3 4 Q", domain.Position{}, ErrInvalidOrientation},
		{"lowercase orientation", "3 4 n", domain.Position{}, ErrInvalidOrientation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePosition_ErrorDetails(t *testing.T) {
	_, err := ValidatePosition(RawPosition{X: "1", Y: "zz", Orientation: "N"})
	var coordErr *InvalidCoordinateError
	require.True(t, errors.As(err, &coordErr))
	assert.Equal(t, "1", coordErr.X)
	assert.Equal(t, "zz", coordErr.Y)
	assert.Contains(t, err.Error(), "[1, zz]")

	_, err = ValidatePosition(RawPosition{X: "1", Y: "2", Orientation: "NE"})
	var orientationErr *InvalidOrientationError
	require.True(t, errors.As(err, &orientationErr))
	assert.Equal(t, "NE", orientationErr.Orientation)
}

func TestValidatePosition_CoordinateCheckedBeforeOrientation(t *testing.T) {
	_, err := ValidatePosition(RawPosition{X: "x", Y: "1", Orientation: "Q"})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestValidateCommand(t *testing.T) {
	got, err := ValidateCommand("LRF")
	require.NoError(t, err)
	assert.Equal(t, domain.Command("LRF"), got)

	got, err = ValidateCommand("")
	require.NoError(t, err)
	assert.Equal(t, domain.Command(""), got)

	long := ""
	for i := 0; i < 1000; i++ {
		long += "F"
	}
	got, err = ValidateCommand(long)
	require.NoError(t, err)
	assert.Len(t, string(got), 1000)
}

func TestValidateCommand_RejectsUnknownCharacter(t *testing.T) {
	tests := []struct {
		input string
		char  rune
		index int
	}{
		{"LRX", 'X', 2},
		{"l", 'l', 0},
		{"FF F", ' ', 2},
		{"FÖ", 'Ö', 1},
		{"Lé X", 'é', 1},
		{"LRF\U0001F680F", '\U0001F680', 3},
		{"\u00e9", '\u00e9', 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ValidateCommand(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMovement)

			var moveErr *InvalidMovementError
			require.True(t, errors.As(err, &moveErr))
			assert.Equal(t, tt.char, moveErr.Char)
			assert.Equal(t, tt.index, moveErr.Index)
			assert.Contains(t, err.Error(), string(tt.char))
		})
	}
}
