// Package logging builds the zerolog loggers used across the server.
//
// Stdout carries the MCP protocol, so every logger built here is meant to
// write to stderr or a file.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel is the environment variable that selects the log level.
const EnvLevel = "BLOB_MCP_LOG_LEVEL"

// EnvFormat selects the log format: "json" (default) or "console".
const EnvFormat = "BLOB_MCP_LOG_FORMAT"

// ParseLevel maps a level name to a zerolog level. Names are case-insensitive;
// an empty or unknown name selects info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// FromEnv builds a logger writing to w, configured from EnvLevel and
// EnvFormat.
func FromEnv(w io.Writer, getenv func(string) string) zerolog.Logger {
	level := getenv(EnvLevel)
	if strings.EqualFold(getenv(EnvFormat), "console") {
		return NewConsole(w, level)
	}
	return New(w, level)
}

// New returns a JSON logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// NewConsole returns a human readable logger writing to w at the named level.
func NewConsole(w io.Writer, level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger()
}
