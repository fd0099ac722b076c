package provision

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
)

// CommandStep runs a shell command on the target as its action, with an
// optional check command as its precondition. The check exiting 0 means
// satisfied.
type CommandStep struct {
	name        StepName
	command     string
	checkCmd    string
	description string
}

// NewCommandStep creates a command step. Name must be valid.
func NewCommandStep(name StepName, command string) *CommandStep {
	return &CommandStep{
		name:    name,
		command: command,
	}
}

// WithCheck sets the check command.
func (s *CommandStep) WithCheck(cmd string) *CommandStep {
	s.checkCmd = cmd
	return s
}

// WithDescription sets the step description.
func (s *CommandStep) WithDescription(desc string) *CommandStep {
	s.description = desc
	return s
}

// Name returns the step name.
func (s *CommandStep) Name() StepName {
	return s.name
}

// Command returns the command to execute.
func (s *CommandStep) Command() string {
	return s.command
}

// CheckCommand returns the check command.
func (s *CommandStep) CheckCommand() string {
	return s.checkCmd
}

// Description returns the step description.
func (s *CommandStep) Description() string {
	return s.description
}

// Satisfied runs the check command on the target.
func (s *CommandStep) Satisfied(ctx context.Context, target transport.Connection) (bool, error) {
	if s.checkCmd == "" {
		return false, nil
	}

	result, err := target.Run(ctx, s.checkCmd)
	if err != nil {
		return false, fmt.Errorf("check command failed: %w", err)
	}

	return result.Success(), nil
}

// Apply runs the command on the target.
func (s *CommandStep) Apply(ctx context.Context, target transport.Connection) error {
	return RunCommand(ctx, target, s.command)
}

// RunCommand runs cmd and turns a non-zero exit into an error carrying the
// command's last line of output.
func RunCommand(ctx context.Context, target transport.Connection, cmd string) error {
	result, err := target.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("command failed to run: %w", err)
	}

	if !result.Success() {
		if detail := result.FailureDetail(); detail != "" {
			return fmt.Errorf("command exited with code %d: %s", result.ExitCode, detail)
		}
		return fmt.Errorf("command exited with code %d", result.ExitCode)
	}

	return nil
}

var _ Step = (*CommandStep)(nil)
