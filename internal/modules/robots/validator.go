package robots

import (
	"strconv"
	"strings"

	"github.com/aristath/mars-command/internal/domain"
)

// RawPosition is an unvalidated position as received from a caller
type RawPosition struct {
	X           string
	Y           string
	Orientation string
}

// ParsePosition validates a "x y O" position string
func ParsePosition(s string) (domain.Position, error) {
	parts := strings.Split(s, " ")
	if len(parts) != 3 {
		return domain.Position{}, &FormatError{
			Input:  s,
			Reason: "invalid number of arguments, (xPos yPos orientation) expected",
		}
	}

	return ValidatePosition(RawPosition{
		X:           parts[0],
		Y:           parts[1],
		Orientation: parts[2],
	})
}

// ValidatePosition converts a raw position into a canonical one
func ValidatePosition(raw RawPosition) (domain.Position, error) {
	x, errX := parseCoordinate(raw.X)
	y, errY := parseCoordinate(raw.Y)
	if errX != nil || errY != nil {
		return domain.Position{}, &InvalidCoordinateError{X: raw.X, Y: raw.Y}
	}

	orientation := domain.Orientation(raw.Orientation)
	if !orientation.Valid() {
		return domain.Position{}, &InvalidOrientationError{Orientation: raw.Orientation}
	}

	return domain.Position{X: x, Y: y, Orientation: orientation}, nil
}

// ValidateCommand checks every character of s against {L, R, F}
func ValidateCommand(s string) (domain.Command, error) {
	index := 0
	for _, ch := range s {
		switch ch {
		case rune(domain.TurnLeft), rune(domain.TurnRight), rune(domain.Forward):
		default:
			return "", &InvalidMovementError{Char: ch, Index: index}
		}
		index++
	}
	return domain.Command(s), nil
}

func parseCoordinate(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
