package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewTestLogger(t)

	logger.With(slog.String("step", "cases")).Warn("Unknown country dropped", slog.Int("rows", 2))
	logger.Debug("Path resolution summary")
	logger.Info("Pipeline complete")

	require.Len(t, logs.All(), 3)
	assert.Len(t, logs.Records(slog.LevelDebug), 1)

	r := AssertLogged(t, logs, slog.LevelWarn, "dropped")
	assert.Equal(t, "cases", r.Attrs["step"])
	assert.Equal(t, int64(2), r.Attrs["rows"])

	_, ok := logs.Find(slog.LevelError, "Pipeline")
	assert.False(t, ok)
}
