// Package transport runs shell commands on the target host, over SSH or on
// the local machine.
package transport

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
)

// CommandResult holds the result of a command run on the host.
type CommandResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success returns true if the command exited with code 0.
func (r *CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CombinedOutput returns stdout and stderr combined.
func (r *CommandResult) CombinedOutput() []byte {
	result := make([]byte, 0, len(r.Stdout)+len(r.Stderr))
	result = append(result, r.Stdout...)
	result = append(result, r.Stderr...)
	return result
}

// FailureDetail returns the most useful line of output for an error message:
// the last non-empty stderr line, falling back to stdout.
func (r *CommandResult) FailureDetail() string {
	for _, out := range [][]byte{r.Stderr, r.Stdout} {
		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if line := strings.TrimSpace(lines[i]); line != "" {
				return line
			}
		}
	}
	return ""
}

// Connection is an open session to the target host.
type Connection interface {
	// Host returns the connected host.
	Host() *host.Host

	// Run executes a command with sh semantics and returns the result.
	// A non-zero exit code is not an error; transport failures are.
	Run(ctx context.Context, cmd string) (*CommandResult, error)

	// RunWithInput executes a command with stdin input.
	RunWithInput(ctx context.Context, cmd string, stdin io.Reader) (*CommandResult, error)

	// Close closes the connection.
	Close() error
}

// Transport opens connections to hosts.
type Transport interface {
	// Name returns the transport name ("ssh" or "local").
	Name() string

	// Connect establishes a connection to a host.
	Connect(ctx context.Context, h *host.Host) (Connection, error)

	// Ping verifies the host can run a trivial command.
	Ping(ctx context.Context, h *host.Host) error
}

// ForHost returns the transport that reaches h.
func ForHost(h *host.Host) Transport {
	if h.IsLocal() {
		return NewLocalTransport()
	}
	return NewSSHTransport()
}

func ping(ctx context.Context, t Transport, h *host.Host) error {
	conn, err := t.Connect(ctx, h)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	result, err := conn.Run(ctx, "echo pong")
	if err != nil {
		return err
	}
	if !result.Success() {
		return &ExitError{Command: "echo pong", Result: result}
	}
	return nil
}
