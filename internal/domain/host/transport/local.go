package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
)

// LocalTransport runs commands on the machine running hostprep.
type LocalTransport struct {
	// Shell is the interpreter used for commands (default "sh").
	Shell string
}

// NewLocalTransport creates a new local transport.
func NewLocalTransport() *LocalTransport {
	return &LocalTransport{Shell: "sh"}
}

// Name returns "local".
func (t *LocalTransport) Name() string {
	return "local"
}

// Connect returns a local connection.
func (t *LocalTransport) Connect(_ context.Context, h *host.Host) (Connection, error) {
	if _, err := exec.LookPath(t.shell()); err != nil {
		h.MarkError(err)
		return nil, err
	}
	h.MarkOnline()
	return &LocalConnection{host: h, shell: t.shell()}, nil
}

// Ping runs a trivial command locally.
func (t *LocalTransport) Ping(ctx context.Context, h *host.Host) error {
	return ping(ctx, t, h)
}

func (t *LocalTransport) shell() string {
	if t.Shell == "" {
		return "sh"
	}
	return t.Shell
}

// LocalConnection implements Connection for local execution.
type LocalConnection struct {
	host  *host.Host
	shell string
}

// Host returns the host.
func (c *LocalConnection) Host() *host.Host {
	return c.host
}

// Run executes a command locally.
func (c *LocalConnection) Run(ctx context.Context, cmd string) (*CommandResult, error) {
	return c.RunWithInput(ctx, cmd, nil)
}

// RunWithInput executes a command with stdin.
func (c *LocalConnection) RunWithInput(ctx context.Context, cmdStr string, stdin io.Reader) (*CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, c.shell, "-c", cmdStr)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	err := cmd.Run()
	result := &CommandResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}

// Close is a no-op for local connections.
func (c *LocalConnection) Close() error {
	return nil
}
