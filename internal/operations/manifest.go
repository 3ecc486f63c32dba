package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PipelineManifest records what a run did: every step, its status, the
// files it wrote and their row counts. It is written next to the
// processed tables.
type PipelineManifest struct {
	mu sync.RWMutex

	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty"`

	Config map[string]interface{} `json:"config,omitempty"`

	Steps []StepExecution `json:"steps"`

	Status      string    `json:"status"` // "pending", "running", "completed", "failed", "cancelled"
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// StepExecution tracks the execution of a single step
type StepExecution struct {
	StepID    string                 `json:"step_id"`
	StepName  string                 `json:"step_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  string                 `json:"duration"`
	Status    string                 `json:"status"` // "running", "completed", "failed", "skipped"
	Outputs   []string               `json:"outputs,omitempty"`
	Rows      int                    `json:"rows"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewPipelineManifest creates a new pipeline manifest
func NewPipelineManifest(operationID string, config map[string]interface{}) *PipelineManifest {
	now := time.Now()
	return &PipelineManifest{
		ID:          uuid.New().String(),
		OperationID: operationID,
		StartTime:   now,
		Config:      config,
		Steps:       []StepExecution{},
		Status:      "pending",
		LastUpdated: now,
	}
}

func (m *PipelineManifest) step(stepID string) *StepExecution {
	for i := range m.Steps {
		if m.Steps[i].StepID == stepID {
			return &m.Steps[i]
		}
	}
	return nil
}

// RecordStepStart records the start of a step execution
func (m *PipelineManifest) RecordStepStart(stepID, stepName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Status = "running"
	m.LastUpdated = time.Now()
	// Retries reuse the existing entry
	if s := m.step(stepID); s != nil {
		s.StartTime = time.Now()
		s.Status = "running"
		s.Error = ""
		return
	}

	m.Steps = append(m.Steps, StepExecution{
		StepID:    stepID,
		StepName:  stepName,
		StartTime: time.Now(),
		Status:    "running",
	})
}

// RecordStepCompletion records the completion of a step
func (m *PipelineManifest) RecordStepCompletion(stepID string, outputs []string, rows int, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.step(stepID); s != nil {
		s.EndTime = time.Now()
		s.Duration = s.EndTime.Sub(s.StartTime).String()
		s.Status = "completed"
		s.Outputs = outputs
		s.Rows = rows
		if len(metadata) > 0 {
			s.Metadata = metadata
		}
	}
	m.LastUpdated = time.Now()
}

// RecordStepFailure records a step failure
func (m *PipelineManifest) RecordStepFailure(stepID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.step(stepID); s != nil {
		s.EndTime = time.Now()
		s.Duration = s.EndTime.Sub(s.StartTime).String()
		s.Status = "failed"
		s.Error = err.Error()
	}
	m.Status = "failed"
	m.Error = fmt.Sprintf("step %s failed: %v", stepID, err)
	m.LastUpdated = time.Now()
}

// RecordStepSkipped records a step that never ran
func (m *PipelineManifest) RecordStepSkipped(stepID, stepName, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.step(stepID)
	if s == nil {
		m.Steps = append(m.Steps, StepExecution{StepID: stepID, StepName: stepName})
		s = &m.Steps[len(m.Steps)-1]
	}
	s.Status = "skipped"
	s.Error = reason
	m.LastUpdated = time.Now()
}

// Finish sets the final run status
func (m *PipelineManifest) Finish(status OperationStatusValue, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	m.Status = string(status)
	if err != nil && m.Error == "" {
		m.Error = err.Error()
	}
	m.LastUpdated = m.EndTime
}

// IsStepCompleted checks if a step has been completed
func (m *PipelineManifest) IsStepCompleted(stepID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.step(stepID)
	return s != nil && s.Status == "completed"
}

// SaveToFile writes the manifest as indented JSON through a temporary file
func (m *PipelineManifest) SaveToFile(path string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*PipelineManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest PipelineManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}
