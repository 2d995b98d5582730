package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// Log output formats accepted by SetupLogger.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// SetupLogger configures zerolog for the given format, writing to stderr.
func SetupLogger(format string, debug bool) (zerolog.Logger, error) {
	switch format {
	case FormatConsole, "":
		return NewConsoleLogger(os.Stderr, debug), nil
	case FormatJSON:
		return NewStructuredLogger(os.Stderr, debug), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

// NewConsoleLogger configures zerolog with pretty console output
func NewConsoleLogger(w io.Writer, debug bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()
}

// NewStructuredLogger configures zerolog for structured (JSON) output
func NewStructuredLogger(w io.Writer, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(level(debug)).
		With().
		Timestamp().
		Logger()
}

// NewServerLogger returns the logger used by the inspector server.
func NewServerLogger(w io.Writer, format string, debug bool) *charmlog.Logger {
	opts := charmlog.Options{
		Level:           charmlog.InfoLevel,
		ReportTimestamp: true,
	}
	if debug {
		opts.Level = charmlog.DebugLevel
	}
	if format == FormatJSON {
		opts.Formatter = charmlog.JSONFormatter
	}
	return charmlog.NewWithOptions(w, opts)
}

func level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
