package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"covidlab/internal/infrastructure"
)

// Manager runs registered steps in dependency order
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewManager creates a new operation manager. A nil tracer disables
// spans and metrics.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(infrastructure.GetLogger(), "operations"),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// SetLogger replaces the manager's logger
func (m *Manager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// RegisterStep registers a Step with the pipeline
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry of steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the pipeline. With req.Step set only that step runs and
// its dependencies are expected to have left their outputs on disk.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetRunID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	steps, err := m.plan(req)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStepState(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, cancel := context.WithCancel(ctx)
	m.trackCancel(req.ID, cancel)
	defer func() {
		m.untrackCancel(req.ID)
		cancel()
	}()

	ctx, span := m.tracer.TraceOperationExecution(ctx, req, len(steps))
	defer span.End()

	manifest := NewPipelineManifest(req.ID, req.Parameters)

	m.logOperationStart(ctx, req, len(steps))
	state.Start()

	err = m.executeSequential(ctx, state, steps, manifest)

	var status OperationStatusValue
	switch {
	case err == nil:
		state.Complete()
		status = OperationStatusCompleted
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
		status = OperationStatusCancelled
	default:
		state.Fail(err)
		status = OperationStatusFailed
	}

	manifest.Finish(status, err)
	if m.config.ManifestPath != "" {
		if saveErr := manifest.SaveToFile(m.config.ManifestPath); saveErr != nil {
			m.logger.WarnContext(ctx, "manifest_save_failed",
				slog.String("path", m.config.ManifestPath),
				slog.String("error", saveErr.Error()))
		}
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), status, err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), status)

	return m.createResponse(state), err
}

// CancelOperation cancels a running pipeline
func (m *Manager) CancelOperation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.cancels[id]
	if !ok {
		return fmt.Errorf("operation %s not found", id)
	}
	cancel()
	return nil
}

// plan returns the steps a request runs
func (m *Manager) plan(req OperationRequest) ([]Step, error) {
	if req.Step != "" {
		step, err := m.registry.Get(req.Step)
		if err != nil {
			return nil, NewNotFoundError(req.Step)
		}
		return []Step{step}, nil
	}

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		return nil, NewFatalError("failed to order steps", err)
	}
	return steps, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step, manifest *PipelineManifest) error {
	inRun := make(map[string]bool, len(steps))
	for _, step := range steps {
		inRun[step.ID()] = true
	}

	var failures []error
	for i, step := range steps {
		if ctx.Err() != nil {
			m.skipRemaining(ctx, state, steps[i:], manifest, "operation cancelled")
			return cancellationError(step.ID(), ctx.Err())
		}

		stepState := state.StepState(step.ID())
		if stepState.GetStatus() == StepStatusSkipped {
			m.recordSkip(ctx, state.ID, step, stepState.Message, manifest)
			continue
		}

		err := m.executeStep(ctx, state, step, inRun, manifest)
		if err == nil {
			continue
		}

		m.logStepError(ctx, state.ID, step.ID(), err)
		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipRemaining(ctx, state, steps[i+1:], manifest, "operation cancelled")
			return err
		}

		failures = append(failures, err)
		m.skipDependentSteps(state, steps, step.ID())
		if !m.config.ContinueOnError {
			m.skipRemaining(ctx, state, steps[i+1:], manifest, fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}

	return errors.Join(failures...)
}

// executeStep runs a single step once
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step, inRun map[string]bool, manifest *PipelineManifest) error {
	stepState := state.StepState(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := m.checkDependencies(state, step, inRun); err != nil {
		m.recordFailure(stepState, step, manifest, err)
		return err
	}

	if err := step.Validate(state); err != nil {
		verr := &OperationError{
			Type:    ErrorTypeValidation,
			Step:    step.ID(),
			Message: "validation failed",
			Cause:   err,
		}
		m.recordFailure(stepState, step, manifest, verr)
		return verr
	}

	stepState.Start()
	manifest.RecordStepStart(step.ID(), step.Name())
	m.logStepStart(ctx, state.ID, step.ID())

	if err := m.runStep(ctx, state, step, stepState); err != nil {
		if ctx.Err() != nil {
			cerr := cancellationError(step.ID(), ctx.Err())
			m.recordFailure(stepState, step, manifest, cerr)
			return cerr
		}
		werr := WrapError(err, step.ID(), "step execution failed")
		m.recordFailure(stepState, step, manifest, werr)
		return werr
	}

	stepState.Complete()
	outputs, rows, meta := stepState.Snapshot()
	manifest.RecordStepCompletion(step.ID(), outputs, rows, meta)
	m.logStepComplete(ctx, state.ID, step.ID(), stepState.Duration(), rows)
	return nil
}

// runStep executes a step inside its span
func (m *Manager) runStep(ctx context.Context, state *OperationState, step Step, stepState *StepState) error {
	ctx, span := m.tracer.TraceStepExecution(ctx, state.ID, step.ID())
	defer span.End()

	start := time.Now()
	err := step.Execute(ctx, state)

	_, rows, _ := stepState.Snapshot()
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), rows, err)
	return err
}

func (m *Manager) recordFailure(stepState *StepState, step Step, manifest *PipelineManifest, err error) {
	if stepState.GetStatus() != StepStatusActive {
		manifest.RecordStepStart(step.ID(), step.Name())
	}
	stepState.Fail(err)
	manifest.RecordStepFailure(step.ID(), err)
}

func (m *Manager) recordSkip(ctx context.Context, operationID string, step Step, reason string, manifest *PipelineManifest) {
	manifest.RecordStepSkipped(step.ID(), step.Name(), reason)
	m.tracer.RecordStepSkipped(ctx, step.ID(), reason)
	m.logStepSkipped(ctx, operationID, step.ID(), reason)
}

// skipRemaining marks every pending step as skipped
func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, manifest *PipelineManifest, reason string) {
	for _, step := range steps {
		stepState := state.StepState(step.ID())
		if stepState == nil {
			continue
		}
		switch stepState.GetStatus() {
		case StepStatusPending:
			stepState.Skip(reason)
			m.recordSkip(ctx, state.ID, step, reason, manifest)
		case StepStatusSkipped:
			m.recordSkip(ctx, state.ID, step, stepState.Message, manifest)
		}
	}
}

// skipDependentSteps marks all steps that depend on the failed Step as skipped
func (m *Manager) skipDependentSteps(state *OperationState, steps []Step, failedStepID string) {
	for _, step := range steps {
		for _, dep := range step.GetDependencies() {
			if dep != failedStepID {
				continue
			}
			stepState := state.StepState(step.ID())
			if stepState != nil && stepState.GetStatus() == StepStatusPending {
				stepState.Skip(fmt.Sprintf("dependency %s failed", failedStepID))
				m.skipDependentSteps(state, steps, step.ID())
			}
			break
		}
	}
}

// checkDependencies verifies that dependencies in this run have completed
func (m *Manager) checkDependencies(state *OperationState, step Step, inRun map[string]bool) error {
	for _, dep := range step.GetDependencies() {
		if !inRun[dep] {
			continue
		}
		depState := state.StepState(dep)
		if depState == nil || depState.GetStatus() != StepStatusCompleted {
			status := StepStatusPending
			if depState != nil {
				status = depState.GetStatus()
			}
			return NewDependencyError(step.ID(), dep,
				fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// createResponse creates a pipeline response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	state.mu.RLock()
	defer state.mu.RUnlock()

	steps := make(map[string]*StepState, len(state.Steps))
	for id, s := range state.Steps {
		steps[id] = s
	}

	resp := &OperationResponse{
		ID:     state.ID,
		Status: state.Status,
		Steps:  steps,
	}
	if state.EndTime != nil {
		resp.Duration = state.EndTime.Sub(state.StartTime)
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}

func (m *Manager) trackCancel(id string, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels[id] = cancel
}

func (m *Manager) untrackCancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cancels, id)
}

func cancellationError(stepID string, cause error) *OperationError {
	err := NewCancellationError(stepID)
	err.Cause = cause
	return err
}
