package provision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_SkipPath(t *testing.T) {
	t.Parallel()

	lc, err := newLifecycle("a", time.Now)
	require.NoError(t, err)
	defer lc.stop()

	assert.Equal(t, PhasePending, lc.Phase())
	require.NoError(t, lc.advance(EventCheck, PhaseChecking))
	require.NoError(t, lc.advance(EventSatisfied, PhaseSkipped))
}

func TestLifecycle_ApplyPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event string
		want  Phase
	}{
		{name: "succeeded", event: EventApplied, want: PhaseSucceeded},
		{name: "failed", event: EventApplyFailed, want: PhaseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lc, err := newLifecycle("a", time.Now)
			require.NoError(t, err)
			defer lc.stop()

			require.NoError(t, lc.advance(EventCheck, PhaseChecking))
			require.NoError(t, lc.advance(EventUnsatisfied, PhaseApplying))
			require.NoError(t, lc.advance(tt.event, tt.want))
		})
	}
}

func TestLifecycle_TerminalPhasesRejectEvents(t *testing.T) {
	t.Parallel()

	lc, err := newLifecycle("a", time.Now)
	require.NoError(t, err)
	defer lc.stop()

	require.NoError(t, lc.advance(EventCheck, PhaseChecking))
	require.NoError(t, lc.advance(EventSatisfied, PhaseSkipped))

	err = lc.advance(EventCheck, PhaseChecking)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed in phase skipped")
	assert.Equal(t, PhaseSkipped, lc.Phase())
}

func TestLifecycle_CannotApplyWithoutCheck(t *testing.T) {
	t.Parallel()

	lc, err := newLifecycle("a", time.Now)
	require.NoError(t, err)
	defer lc.stop()

	assert.Error(t, lc.advance(EventApplied, PhaseSucceeded))
	assert.Equal(t, PhasePending, lc.Phase())
}
