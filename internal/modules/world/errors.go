package world

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is matched by every resize validation failure
var ErrInvalidSize = errors.New("invalid world size")

// InvalidSizeError describes a rejected resize request
type InvalidSizeError struct {
	XMax   string
	YMax   string
	Reason string
}

func (e *InvalidSizeError) Error() string {
	if e.XMax == "" && e.YMax == "" {
		return fmt.Sprintf("invalid world size: %s", e.Reason)
	}
	return fmt.Sprintf("invalid world size [%s, %s]: %s", e.XMax, e.YMax, e.Reason)
}

func (e *InvalidSizeError) Is(target error) bool {
	return target == ErrInvalidSize
}
