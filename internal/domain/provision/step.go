package provision

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
)

// Step is one idempotent unit of a runbook. Satisfied is the precondition:
// when it reports true the desired state already holds and Apply is not
// called.
type Step interface {
	// Name returns the unique name of the step.
	Name() StepName

	// Description returns a one-line human-readable summary.
	Description() string

	// Satisfied reports whether the step's desired state already holds on
	// the target. An error means the state could not be determined.
	Satisfied(ctx context.Context, target transport.Connection) (bool, error)

	// Apply brings the target into the desired state.
	Apply(ctx context.Context, target transport.Connection) error
}

// CheckFunc is a precondition.
type CheckFunc func(ctx context.Context, target transport.Connection) (bool, error)

// ApplyFunc is an action.
type ApplyFunc func(ctx context.Context, target transport.Connection) error

// FuncStep is a Step built from plain functions.
type FuncStep struct {
	name        StepName
	description string
	check       CheckFunc
	apply       ApplyFunc
}

// NewStep creates a Step from a precondition and an action. A nil check
// means the step is never satisfied; apply is required.
func NewStep(name, description string, check CheckFunc, apply ApplyFunc) (*FuncStep, error) {
	n, err := NewStepName(name)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	if apply == nil {
		return nil, fmt.Errorf("step %q: action is required", name)
	}
	return &FuncStep{
		name:        n,
		description: description,
		check:       check,
		apply:       apply,
	}, nil
}

// Name returns the step name.
func (s *FuncStep) Name() StepName {
	return s.name
}

// Description returns the step description.
func (s *FuncStep) Description() string {
	return s.description
}

// Satisfied runs the precondition.
func (s *FuncStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	if s.check == nil {
		return false, nil
	}
	return s.check(ctx, target)
}

// Apply runs the action.
func (s *FuncStep) Apply(ctx context.Context, target transport.Connection) error {
	return s.apply(ctx, target)
}

var _ Step = (*FuncStep)(nil)
