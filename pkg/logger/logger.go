// Package logger builds the zerolog instances used throughout the gateway.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// serviceName is stamped on every entry so gateway lines stay
// attributable once log streams are aggregated.
const serviceName = "agent-payment-gateway"

// New builds the process-wide logger. Output is structured JSON on
// stdout; pretty switches to the console writer for local runs.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return newLogger(level, w).With().Caller().Logger()
}

// NewWithWriter builds a logger against an arbitrary writer, letting
// tests capture and inspect the emitted entries.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return newLogger(level, w)
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// parseLevel maps a config level string to a zerolog level. Unknown or
// empty values fall back to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
