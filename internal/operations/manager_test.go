package operations_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/config"
	"covidlab/internal/infrastructure"
	"covidlab/internal/operations"
	"covidlab/internal/operations/testutil"
)

func newManager(t *testing.T, cfg *operations.Config, steps ...operations.Step) *operations.Manager {
	t.Helper()
	registry := operations.NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	if cfg == nil {
		cfg = testutil.CreateTestConfig()
	}
	return operations.NewManager(registry, cfg, nil)
}

func TestManagerExecuteFullPipeline(t *testing.T) {
	manager := newManager(t, nil, testutil.CreateDiamondSteps()...)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	require.Len(t, resp.Steps, 4)
	for id, s := range resp.Steps {
		assert.Equal(t, operations.StepStatusCompleted, s.GetStatus(), id)
	}
}

func TestManagerExecuteGeneratesRunID(t *testing.T) {
	manager := newManager(t, nil, testutil.CreateSuccessfulStep("cases"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)

	ctx := infrastructure.WithRunID(context.Background(), "from-context")
	resp, err = manager.Execute(ctx, operations.OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from-context", resp.ID)
}

func TestManagerFailureSkipsDependents(t *testing.T) {
	a := testutil.CreateSuccessfulStep("A")
	b := testutil.CreateFailingStep("B", errors.New("bad input"), "A")
	c := testutil.CreateSuccessfulStep("C", "A")
	d := testutil.CreateSuccessfulStep("D", "B", "C")

	t.Run("abort", func(t *testing.T) {
		manager := newManager(t, nil, a, b, c, d)
		resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad input")

		assert.Equal(t, operations.OperationStatusFailed, resp.Status)
		assert.Equal(t, operations.StepStatusCompleted, resp.Steps["A"].GetStatus())
		assert.Equal(t, operations.StepStatusFailed, resp.Steps["B"].GetStatus())
		assert.Equal(t, operations.StepStatusSkipped, resp.Steps["C"].GetStatus())
		assert.Equal(t, operations.StepStatusSkipped, resp.Steps["D"].GetStatus())
	})

	t.Run("continue on error", func(t *testing.T) {
		cfg := testutil.CreateTestConfig()
		cfg.ContinueOnError = true
		c2 := testutil.CreateSuccessfulStep("C", "A")
		manager := newManager(t, cfg, testutil.CreateSuccessfulStep("A"),
			testutil.CreateFailingStep("B", errors.New("bad input"), "A"), c2,
			testutil.CreateSuccessfulStep("D", "B", "C"))

		resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, operations.OperationStatusFailed, resp.Status)
		assert.Equal(t, operations.StepStatusCompleted, resp.Steps["C"].GetStatus())
		assert.Equal(t, operations.StepStatusSkipped, resp.Steps["D"].GetStatus())
		assert.Equal(t, 1, c2.GetExecuteCalls())
	})
}

func TestManagerRunsFailedStepOnce(t *testing.T) {
	t.Run("step error", func(t *testing.T) {
		step := testutil.CreateFlakyStep("lake", 1)
		manager := newManager(t, nil, step)

		resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, 1, step.GetExecuteCalls())
		assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
		assert.Equal(t, operations.StepStatusFailed, resp.Steps["lake"].GetStatus())
	})

	t.Run("plain error", func(t *testing.T) {
		step := testutil.CreateFailingStep("cases", nil)
		manager := newManager(t, nil, step)

		_, err := manager.Execute(context.Background(), operations.OperationRequest{})
		require.Error(t, err)
		assert.Equal(t, 1, step.GetExecuteCalls())
		assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	})
}

func TestManagerValidationFailure(t *testing.T) {
	step := testutil.NewStepBuilder("cases").
		WithValidate(func(*operations.OperationState) error { return errors.New("input missing") }).
		Build()
	manager := newManager(t, nil, step)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Equal(t, 0, step.GetExecuteCalls())
	assert.Equal(t, operations.StepStatusFailed, resp.Steps["cases"].GetStatus())
}

func TestManagerCancelledDuringStep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	slow := testutil.CreateSlowStep("slow", time.Second)
	after := testutil.CreateSuccessfulStep("after")
	manager := newManager(t, nil, slow, after)

	resp, err := manager.Execute(ctx, operations.OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, slow.GetExecuteCalls())
	assert.Equal(t, 0, after.GetExecuteCalls())
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["after"].GetStatus())
}

func TestManagerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := testutil.NewStepBuilder("first").
		WithExecute(func(context.Context, *operations.OperationState) error {
			cancel()
			return nil
		}).
		Build()
	second := testutil.CreateSuccessfulStep("second", "first")
	manager := newManager(t, nil, first, second)

	resp, err := manager.Execute(ctx, operations.OperationRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
	assert.Equal(t, operations.StepStatusSkipped, resp.Steps["second"].GetStatus())
	assert.Equal(t, 0, second.GetExecuteCalls())
}

func TestManagerCancelOperation(t *testing.T) {
	var manager *operations.Manager
	step := testutil.NewStepBuilder("wait").
		WithExecute(func(ctx context.Context, state *operations.OperationState) error {
			require.NoError(t, manager.CancelOperation(state.ID))
			<-ctx.Done()
			return ctx.Err()
		}).
		Build()
	manager = newManager(t, nil, step)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-x"})
	require.Error(t, err)
	assert.Equal(t, operations.OperationStatusCancelled, resp.Status)
	assert.Error(t, manager.CancelOperation("run-x"))
}

func TestManagerSingleStep(t *testing.T) {
	a := testutil.CreateSuccessfulStep("A")
	b := testutil.CreateSuccessfulStep("B", "A")
	manager := newManager(t, nil, a, b)

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{Step: "B"})
	require.NoError(t, err)
	assert.Len(t, resp.Steps, 1)
	assert.Equal(t, 0, a.GetExecuteCalls())
	assert.Equal(t, 1, b.GetExecuteCalls())

	_, err = manager.Execute(context.Background(), operations.OperationRequest{Step: "nope"})
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeNotFound, operations.GetErrorType(err))
}

func TestManagerWritesManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	cfg := testutil.CreateTestConfig()
	cfg.ManifestPath = path
	manager := newManager(t, cfg,
		testutil.CreateSuccessfulStep("A"),
		testutil.CreateFailingStep("B", errors.New("bad"), "A"),
		testutil.CreateSuccessfulStep("C", "B"))

	resp, err := manager.Execute(context.Background(), operations.OperationRequest{ID: "run-m"})
	require.Error(t, err)
	require.True(t, config.FileExists(path))

	manifest, err := operations.LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, manifest.OperationID)
	assert.Equal(t, "failed", manifest.Status)
	require.Len(t, manifest.Steps, 3)
	assert.Equal(t, "completed", manifest.Steps[0].Status)
	assert.Equal(t, []string{"A.csv"}, manifest.Steps[0].Outputs)
	assert.Equal(t, 1, manifest.Steps[0].Rows)
	assert.Equal(t, "failed", manifest.Steps[1].Status)
	assert.Equal(t, "skipped", manifest.Steps[2].Status)
}

func TestManagerWithTracer(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{}, nil)
	require.NoError(t, err)
	tracer, err := operations.NewOperationTracer(providers)
	require.NoError(t, err)

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStep("A")))
	require.NoError(t, registry.Register(testutil.CreateFailingStep("B", nil)))
	manager := operations.NewManager(registry, testutil.CreateTestConfig(), tracer)

	_, err = manager.Execute(context.Background(), operations.OperationRequest{})
	assert.Error(t, err)
}
