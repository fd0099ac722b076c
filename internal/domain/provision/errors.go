package provision

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for provisioning.
const (
	ErrCodePreconditionCheck = "PRECONDITION_CHECK"
	ErrCodeActionFailed      = "ACTION_FAILED"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
)

// Sentinels for errors.Is. Every *StepError matches the sentinel of its code.
var (
	ErrPreconditionCheck = errors.New("precondition check failed")
	ErrActionFailed      = errors.New("action failed")
	ErrDuplicateName     = errors.New("duplicate step name")
)

// StepError represents a provisioning error with an actionable suggestion.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	Step       string // Step name if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	msg := e.Message
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Underlying.Error())
	}
	if e.Step != "" {
		return fmt.Sprintf("step %q: %s", e.Step, msg)
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel for the error's code, or another StepError with
// the same code.
func (e *StepError) Is(target error) bool {
	if t, ok := target.(*StepError); ok {
		return e.Code == t.Code
	}
	switch e.Code {
	case ErrCodePreconditionCheck:
		return target == ErrPreconditionCheck
	case ErrCodeActionFailed:
		return target == ErrActionFailed
	case ErrCodeDuplicateName:
		return target == ErrDuplicateName
	}
	return false
}

// Reason returns the cause without decoration: the message of the
// underlying error, or the error's own message.
func (e *StepError) Reason() string {
	if e.Underlying != nil {
		return e.Underlying.Error()
	}
	return e.Message
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Step != "" {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.Step))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}

	return b.String()
}

// WithSuggestion returns a new StepError with suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	return &StepError{
		Code:       e.Code,
		Message:    e.Message,
		Step:       e.Step,
		Suggestion: suggestion,
		Underlying: e.Underlying,
	}
}

// NewPreconditionCheckError reports a precondition that could not be
// evaluated. The executor treats it as "not satisfied".
func NewPreconditionCheckError(step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodePreconditionCheck,
		Message:    "precondition check failed",
		Step:       step,
		Suggestion: "The action runs anyway. Rerun with --verbose to see the check command output.",
		Underlying: err,
	}
}

// NewActionFailedError reports a failed action. It halts the run.
func NewActionFailedError(step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeActionFailed,
		Message:    "action failed",
		Step:       step,
		Suggestion: "Fix the cause on the host and rerun; completed steps will be skipped.",
		Underlying: err,
	}
}

// NewDuplicateNameError reports a second step registered under an existing name.
func NewDuplicateNameError(step string) *StepError {
	return &StepError{
		Code:       ErrCodeDuplicateName,
		Message:    "a step with this name is already registered",
		Step:       step,
		Suggestion: "Each step needs a unique name. Check for packages or modules listed twice in the runbook.",
	}
}
