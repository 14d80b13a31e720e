// Package logger builds the zerolog loggers used across the service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Pretty bool      // Enable pretty console output
	Output io.Writer // Defaults to stdout
}

// ParseLevel maps a configured level name to a zerolog level.
// Unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Nop returns a disabled logger for tests and optional collaborators.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
