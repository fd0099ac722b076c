package provision

// Outcome is the final state of an attempted step.
type Outcome string

const (
	// OutcomeSkipped indicates the precondition held and the action was not run.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSucceeded indicates the action ran and returned no error.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed indicates the action returned an error.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// OK returns true for outcomes that let the run continue.
func (o Outcome) OK() bool {
	switch o {
	case OutcomeSkipped, OutcomeSucceeded:
		return true
	case OutcomeFailed:
		return false
	}
	return false
}
