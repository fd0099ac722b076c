// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/felixgeelhaar/hostprep/internal/domain/host"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
)

// Call records one command sent to a Connection.
type Call struct {
	Command string
	Stdin   string
}

// Connection is a thread-safe test double for transport.Connection.
// Commands are matched by their exact text.
type Connection struct {
	mu       sync.RWMutex
	host     *host.Host
	results  map[string]transport.CommandResult
	errors   map[string]error
	fallback *transport.CommandResult
	calls    []Call
	closed   bool
}

// NewConnection creates a Connection mock for h. A nil host means the
// local machine.
func NewConnection(h *host.Host) *Connection {
	if h == nil {
		h = host.NewLocal()
	}
	return &Connection{
		host:    h,
		results: make(map[string]transport.CommandResult),
		errors:  make(map[string]error),
		calls:   make([]Call, 0),
	}
}

// AddResult registers an expected command and its result.
func (m *Connection) AddResult(command string, result transport.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[command] = result
}

// AddOutput registers a command that exits with code and prints stdout.
func (m *Connection) AddOutput(command string, code int, stdout string) {
	m.AddResult(command, transport.CommandResult{ExitCode: code, Stdout: []byte(stdout)})
}

// AddError registers an expected command that should fail to run.
func (m *Connection) AddError(command string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[command] = err
}

// SetFallback answers every unregistered command with result.
func (m *Connection) SetFallback(result transport.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &result
}

// Host returns the host the mock pretends to be connected to.
func (m *Connection) Host() *host.Host {
	return m.host
}

// Run executes a mock command.
func (m *Connection) Run(ctx context.Context, cmd string) (*transport.CommandResult, error) {
	return m.RunWithInput(ctx, cmd, nil)
}

// RunWithInput executes a mock command, recording stdin.
func (m *Connection) RunWithInput(_ context.Context, cmd string, stdin io.Reader) (*transport.CommandResult, error) {
	var input string
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		input = string(data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Command: cmd, Stdin: input})

	if err, ok := m.errors[cmd]; ok {
		return nil, err
	}
	if result, ok := m.results[cmd]; ok {
		return &result, nil
	}
	if m.fallback != nil {
		result := *m.fallback
		return &result, nil
	}
	return nil, fmt.Errorf("no mock result for command: %s", cmd)
}

// Close marks the connection closed.
func (m *Connection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Connection) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Calls returns all recorded command invocations.
func (m *Connection) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Commands returns the text of every recorded command, in order.
func (m *Connection) Commands() []string {
	calls := m.Calls()
	cmds := make([]string, len(calls))
	for i, c := range calls {
		cmds[i] = c.Command
	}
	return cmds
}

// Ran reports whether cmd was executed at least once.
func (m *Connection) Ran(cmd string) bool {
	for _, c := range m.Commands() {
		if c == cmd {
			return true
		}
	}
	return false
}

// Reset clears all registered results, errors, and recorded calls.
func (m *Connection) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]transport.CommandResult)
	m.errors = make(map[string]error)
	m.fallback = nil
	m.calls = make([]Call, 0)
	m.closed = false
}

// Ensure Connection implements transport.Connection.
var _ transport.Connection = (*Connection)(nil)
