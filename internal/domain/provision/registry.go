package provision

import (
	"errors"
	"sync"
)

// Registry holds the ordered steps of a runbook. Steps cannot be removed.
type Registry struct {
	mu    sync.RWMutex
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		steps: make([]Step, 0),
		index: make(map[string]int),
	}
}

// Append adds a step at the end. A step whose name is already registered is
// rejected with a DUPLICATE_NAME StepError and the registry is unchanged.
func (r *Registry) Append(step Step) error {
	if step == nil {
		return errors.New("cannot register a nil step")
	}
	name := step.Name()
	if name.IsZero() {
		return ErrEmptyStepName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name.String()]; exists {
		return NewDuplicateNameError(name.String())
	}

	r.index[name.String()] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// MustAppend adds steps, panicking on the first error.
// Use this for fixed runbooks assembled in code.
func (r *Registry) MustAppend(steps ...Step) *Registry {
	for _, s := range steps {
		if err := r.Append(s); err != nil {
			panic(err)
		}
	}
	return r
}

// List returns the steps in registration order. The slice is a copy.
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// Get returns the step registered under name.
func (r *Registry) Get(name string) (Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.steps[i], true
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}
