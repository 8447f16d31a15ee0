// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	EnvLogLevel  = "TCDLINK_LOG_LEVEL"
	EnvLogFormat = "TCDLINK_LOG_FORMAT"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime, os.Stderr)
}

func ConfigureTests() {
	Configure(ProfileTest, os.Stderr)
}

// Configure installs the default logger once per process; later calls are no-ops.
func Configure(profile Profile, w io.Writer) {
	configureOnce.Do(func() {
		slog.SetDefault(New(profile, w, os.Getenv(EnvLogLevel), os.Getenv(EnvLogFormat)))
	})
}

// New builds a logger for profile, with level and format overrides as read from the environment.
func New(profile Profile, w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: defaultLevel(profile)}
	if lvl, ok := ParseLevel(level); ok {
		opts.Level = lvl
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func defaultLevel(profile Profile) slog.Level {
	switch profile {
	case ProfileTest:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts the usual level names. "off" maps to a level above every record.
func ParseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return slog.LevelInfo, false
	case "trace", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "disabled", "off", "none":
		return slog.LevelError + 4, true
	default:
		return slog.LevelInfo, false
	}
}
