package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
)

func TestConnection_AddOutput(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	conn.AddOutput("pyenv --version", 0, "pyenv 2.3.0\n")

	result, err := conn.Run(context.Background(), "pyenv --version")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "pyenv 2.3.0\n", string(result.Stdout))
	assert.True(t, conn.Host().IsLocal())
}

func TestConnection_NotFound(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	_, err := conn.Run(context.Background(), "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mock result")
}

func TestConnection_AddError(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	boom := errors.New("connection reset")
	conn.AddError("true", boom)

	_, err := conn.Run(context.Background(), "true")
	assert.ErrorIs(t, err, boom)
}

func TestConnection_RecordsCalls(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	conn.AddOutput("a", 0, "")
	conn.AddOutput("b", 1, "")

	_, _ = conn.Run(context.Background(), "a")
	_, _ = conn.RunWithInput(context.Background(), "b", strings.NewReader("input"))

	assert.Equal(t, []string{"a", "b"}, conn.Commands())
	assert.Equal(t, "input", conn.Calls()[1].Stdin)
	assert.True(t, conn.Ran("a"))
	assert.False(t, conn.Ran("c"))
}

func TestConnection_CloseAndReset(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	conn.AddOutput("a", 0, "")
	_, _ = conn.Run(context.Background(), "a")
	require.NoError(t, conn.Close())
	assert.True(t, conn.Closed())

	conn.Reset()
	assert.False(t, conn.Closed())
	assert.Empty(t, conn.Calls())
	_, err := conn.Run(context.Background(), "a")
	assert.Error(t, err)
}

func TestConnection_ThreadSafety(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	conn.AddOutput("cmd", 0, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = conn.Run(context.Background(), "cmd")
		}()
	}
	wg.Wait()

	assert.Len(t, conn.Calls(), 50)
}

func TestConnection_Fallback(t *testing.T) {
	t.Parallel()

	conn := NewConnection(nil)
	conn.AddOutput("known", 1, "")
	conn.SetFallback(transport.CommandResult{ExitCode: 0, Stdout: []byte("ok")})

	result, err := conn.Run(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(result.Stdout))

	result, err = conn.Run(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)

	conn.Reset()
	_, err = conn.Run(context.Background(), "anything")
	assert.Error(t, err)
}
