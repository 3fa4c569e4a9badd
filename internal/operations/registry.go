package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // registration order
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, NewNotFoundError(id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Types describes every registered step in registration order
func (r *Registry) Types() []StepType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]StepType, 0, len(r.order))
	for _, id := range r.order {
		step := r.steps[id]
		types = append(types, StepType{ID: id, Name: step.Name(), Dependencies: step.GetDependencies()})
	}
	return types
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.steps)
}

// Resolve returns the requested steps in dependency order. Dependencies
// outside the selection only constrain order; they are not added. An empty
// selection resolves every registered step.
func (r *Registry) Resolve(ids []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, exists := r.steps[id]; !exists {
			return nil, NewNotFoundError(id)
		}
		selected[id] = true
	}
	if len(ids) == 0 {
		for id := range r.steps {
			selected[id] = true
		}
	}

	// Kahn's algorithm over the selected sub-graph, ties broken by
	// registration order
	inDegree := make(map[string]int, len(selected))
	dependents := make(map[string][]string)
	for id := range selected {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, NewDependencyError(id, dep, "depends on an unregistered step")
			}
			if selected[dep] {
				inDegree[id]++
				dependents[dep] = append(dependents[dep], id)
			}
		}
	}

	ordered := make([]Step, 0, len(selected))
	done := make(map[string]bool, len(selected))
	for len(ordered) < len(selected) {
		progressed := false
		for _, id := range r.order {
			if !selected[id] || done[id] || inDegree[id] > 0 {
				continue
			}
			done[id] = true
			ordered = append(ordered, r.steps[id])
			for _, d := range dependents[id] {
				inDegree[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, NewDependencyError("", "", "dependency cycle detected")
		}
	}
	return ordered, nil
}
