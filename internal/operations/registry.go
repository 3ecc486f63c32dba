package operations

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the pipeline steps by ID, remembering registration order.
// Registration order breaks ties in GetDependencyOrder, so RegisterPipeline
// controls the run order of independent steps.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register adds a step; IDs must be unique and non-empty
func (r *Registry) Register(step Step) error {
	if step == nil {
		return NewValidationError("", "cannot register nil step")
	}
	id := step.ID()
	if id == "" {
		return NewValidationError("", "step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return NewValidationError(id, "step already registered")
	}
	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get returns the step registered under id
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, ok := r.steps[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return step, nil
}

// Has reports whether a step is registered under id
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.steps[id]
	return ok
}

// ListIDs returns the step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// GetDependencyOrder sorts the steps so every step follows its
// dependencies (Kahn's algorithm). Among steps that are ready at the same
// time the one registered first goes first.
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make(map[string]int, len(r.order))
	for _, id := range r.order {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, ok := r.steps[dep]; !ok {
				return nil, NewDependencyError(id, dep, "dependency not registered")
			}
		}
		pending[id] = len(r.steps[id].GetDependencies())
	}

	ordered := make([]Step, 0, len(r.order))
	for len(ordered) < len(r.order) {
		// Scanning in registration order keeps the tie-break stable.
		next := ""
		for _, id := range r.order {
			if n, ok := pending[id]; ok && n == 0 {
				next = id
				break
			}
		}
		if next == "" {
			return nil, NewFatalError(fmt.Sprintf("dependency cycle detected among %v", r.unresolved(pending)), nil)
		}

		delete(pending, next)
		ordered = append(ordered, r.steps[next])
		for _, id := range r.order {
			if _, ok := pending[id]; ok && slices.Contains(r.steps[id].GetDependencies(), next) {
				pending[id]--
			}
		}
	}
	return ordered, nil
}

func (r *Registry) unresolved(pending map[string]int) []string {
	var ids []string
	for _, id := range r.order {
		if _, ok := pending[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ValidateDependencies reports missing dependencies and cycles
func (r *Registry) ValidateDependencies() error {
	_, err := r.GetDependencyOrder()
	return err
}

// GetDependents returns the IDs of the steps that depend directly on stepID,
// in registration order
func (r *Registry) GetDependents(stepID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dependents []string
	for _, id := range r.order {
		if slices.Contains(r.steps[id].GetDependencies(), stepID) {
			dependents = append(dependents, id)
		}
	}
	return dependents
}
