package provision

import (
	"errors"
	"time"
)

// RunResult captures the outcome of one attempted step. It is a value and is
// never modified once recorded in a Run.
type RunResult struct {
	name     StepName
	outcome  Outcome
	err      error
	duration time.Duration
}

// NewRunResult creates a RunResult. The error is kept only for failed outcomes.
func NewRunResult(name StepName, outcome Outcome, err error) RunResult {
	if outcome != OutcomeFailed {
		err = nil
	}
	return RunResult{
		name:    name,
		outcome: outcome,
		err:     err,
	}
}

// Name returns the step name.
func (r RunResult) Name() StepName {
	return r.name
}

// Outcome returns the final state of the step.
func (r RunResult) Outcome() Outcome {
	return r.outcome
}

// Error returns the failure, or nil unless the step failed.
func (r RunResult) Error() error {
	return r.err
}

// Reason returns the action's own error message for failed steps
// ("disk full"), or "".
func (r RunResult) Reason() string {
	if r.err == nil {
		return ""
	}
	var stepErr *StepError
	if errors.As(r.err, &stepErr) {
		return stepErr.Reason()
	}
	return r.err.Error()
}

// Duration returns how long the step took, precondition included.
func (r RunResult) Duration() time.Duration {
	return r.duration
}

// Failed returns true if the step failed.
func (r RunResult) Failed() bool {
	return r.outcome == OutcomeFailed
}

// WithDuration returns a new RunResult with duration set.
func (r RunResult) WithDuration(d time.Duration) RunResult {
	r.duration = d
	return r
}
