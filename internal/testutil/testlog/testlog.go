// Package testlog routes package logs through the test logging profile.
package testlog

import (
	"log/slog"
	"testing"

	"github.com/seagrayinc/tcdlink/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	slog.Info("test started", slog.String("test", t.Name()))
}
