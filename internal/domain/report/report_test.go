package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/testutil/mocks"
)

func step(t *testing.T, name string, satisfied bool, applyErr error) provision.Step {
	t.Helper()
	s, err := provision.NewStep(name, "test step "+name,
		func(context.Context, transport.Connection) (bool, error) { return satisfied, nil },
		func(context.Context, transport.Connection) error { return applyErr },
	)
	require.NoError(t, err)
	return s
}

func execute(t *testing.T, steps ...provision.Step) *provision.Run {
	t.Helper()
	return provision.NewExecutor().Execute(context.Background(), mocks.NewConnection(nil), steps)
}

func TestNewSummary_AllGood(t *testing.T) {
	t.Parallel()

	run := execute(t,
		step(t, "A", false, nil),
		step(t, "B", true, nil),
		step(t, "C", false, nil),
	)

	s := NewSummary(run)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Skipped)
	assert.Zero(t, s.Failed)
	assert.Zero(t, s.NotAttempted)
	assert.Equal(t, 3, s.Attempted())
	assert.True(t, s.OK())
	assert.Equal(t, ExitOK, s.ExitCode())
	assert.Equal(t, run.ID(), s.RunID)
	assert.Equal(t, "local", s.Host)
}

func TestNewSummary_Failure(t *testing.T) {
	t.Parallel()

	run := execute(t,
		step(t, "A", false, nil),
		step(t, "B", false, errors.New("disk full")),
		step(t, "C", false, nil),
	)

	s := NewSummary(run)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.NotAttempted)
	assert.Equal(t, "B", s.FailedStep)
	assert.Equal(t, "disk full", s.FailureReason)
	assert.Equal(t, []string{"C"}, s.Pending)
	assert.Equal(t, ExitStepFailed, s.ExitCode())

	require.Len(t, s.Steps, 2)
	assert.Equal(t, "failed", s.Steps[1].Outcome)
	assert.Equal(t, "disk full", s.Steps[1].Error)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Succeeded", Label(provision.OutcomeSucceeded.String()))
	assert.Equal(t, "Skipped", Label(provision.OutcomeSkipped.String()))
	assert.Equal(t, "Failed", Label(provision.OutcomeFailed.String()))
	assert.Equal(t, "Not Attempted", Label(NotAttempted))
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	run := execute(t,
		step(t, "os:packages", true, nil),
		step(t, "venv:create", false, errors.New("disk full")),
		step(t, "pip:install:requests", false, nil),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, NewSummary(run)))
	out := buf.String()

	assert.Contains(t, out, "STEP")
	assert.Regexp(t, `os:packages\s+Skipped`, out)
	assert.Regexp(t, `venv:create\s+Failed\s+\S+\s+disk full`, out)
	assert.Regexp(t, `pip:install:requests\s+Not Attempted`, out)
	assert.Contains(t, out, "local: 0 succeeded, 1 skipped, 1 failed, 1 not attempted")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	run := execute(t, step(t, "A", false, nil), step(t, "B", true, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewSummary(run)))

	var decoded Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"succeeded", "skipped"}, []string{decoded.Steps[0].Outcome, decoded.Steps[1].Outcome})
	assert.NotContains(t, buf.String(), "failed_step")
}

func TestPlan(t *testing.T) {
	t.Parallel()

	broken, err := provision.NewStep("c", "",
		func(context.Context, transport.Connection) (bool, error) { return false, errors.New("no pyenv") },
		func(context.Context, transport.Connection) error { return nil },
	)
	require.NoError(t, err)

	entries := provision.NewExecutor().Plan(context.Background(), mocks.NewConnection(nil), []provision.Step{
		step(t, "a", true, nil),
		step(t, "b", false, nil),
		broken,
	})
	lines := NewPlan(entries)

	require.Len(t, lines, 3)
	assert.Equal(t, ActionSkip, lines[0].Action)
	assert.Equal(t, ActionApply, lines[1].Action)
	assert.Equal(t, ActionApply, lines[2].Action)
	assert.Contains(t, lines[2].CheckError, "no pyenv")

	var text bytes.Buffer
	require.NoError(t, WritePlanText(&text, lines))
	assert.Contains(t, text.String(), "2 of 3 steps would be applied")
	assert.Contains(t, text.String(), "check failed:")

	var js bytes.Buffer
	require.NoError(t, WritePlanJSON(&js, lines))
	assert.Contains(t, js.String(), `"action": "skip"`)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "250ms", formatDuration(250))
	assert.Equal(t, "1.5s", formatDuration(1540))
}
