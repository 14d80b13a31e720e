package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Timer measures how long an operation took and logs it
type Timer struct {
	start time.Time
	name  string
	slow  time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

// NewTimer starts a timer. Durations above slow are logged as warnings;
// a zero slow threshold disables the warning.
func NewTimer(name string, slow time.Duration, log zerolog.Logger) *Timer {
	t := &Timer{
		name: name,
		slow: slow,
		log:  log,
		now:  time.Now,
	}
	t.start = t.now()
	return t
}

// Stop logs the elapsed time and returns it
func (t *Timer) Stop() time.Duration {
	duration := t.now().Sub(t.start)

	if t.slow > 0 && duration > t.slow {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Dur("threshold", t.slow).
			Msg("Slow operation detected")
		return duration
	}

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Operation completed")
	return duration
}

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func MyFunction() {
//	    defer utils.OperationTimer("my_function", 0, log)()
//	}
func OperationTimer(operation string, slow time.Duration, log zerolog.Logger) func() {
	t := NewTimer(operation, slow, log)
	return func() { t.Stop() }
}
