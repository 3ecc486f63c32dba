package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
)

func TestOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{}, slog.Default())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.Registry)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordStep(context.Background(), "reshape", time.Second, 10, nil)

	assert.NoError(t, providers.WriteMetrics())
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelWritesTracesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "covidlab-test",
		TraceFile:   filepath.Join(dir, "traces.json"),
		MetricsFile: filepath.Join(dir, "metrics.prom"),
	}

	providers, err := InitializeOTel(cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.Registry)

	ctx, span := providers.Tracer.Start(context.Background(), "reshape")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	SetSpanAttributes(ctx, map[string]interface{}{"rows": 12, "table": "confirmed"})
	RecordError(ctx, errors.New("boom"))
	span.End()

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordStep(ctx, "reshape", 250*time.Millisecond, 42, nil)
	metrics.RecordStep(ctx, "mortality", time.Millisecond, 0, errors.New("failed"))
	metrics.RecordRun(ctx, time.Second, false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, providers.Shutdown(shutdownCtx))

	traces, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), `"Name": "reshape"`)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pipeline_step_runs_total")
	assert.Contains(t, string(prom), "pipeline_rows_written_total")
	assert.Contains(t, string(prom), `step_id="mortality"`)
}

func TestPipelineMetricsNil(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.RecordStep(context.Background(), "x", time.Second, 1, nil)
		m.RecordRun(context.Background(), time.Second, true)
	})
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
