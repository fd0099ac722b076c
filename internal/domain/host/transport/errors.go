package transport

import "fmt"

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Result  *CommandResult
}

func (e *ExitError) Error() string {
	detail := e.Result.FailureDetail()
	if detail == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Result.ExitCode, detail)
}
