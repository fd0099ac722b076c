package provision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRunResult_DropsErrorUnlessFailed(t *testing.T) {
	t.Parallel()

	r := NewRunResult(MustNewStepName("a"), OutcomeSkipped, errDiskFull)
	assert.NoError(t, r.Error())
	assert.Empty(t, r.Reason())

	failed := NewRunResult(MustNewStepName("a"), OutcomeFailed, errDiskFull).WithDuration(time.Second)
	assert.Equal(t, "disk full", failed.Reason())
	assert.Equal(t, time.Second, failed.Duration())
	assert.True(t, failed.Failed())
}

func TestRunResult_WithDurationIsACopy(t *testing.T) {
	t.Parallel()

	r := NewRunResult(MustNewStepName("a"), OutcomeSucceeded, nil)
	_ = r.WithDuration(time.Minute)
	assert.Zero(t, r.Duration())
}

func TestOutcome_OK(t *testing.T) {
	t.Parallel()

	assert.True(t, OutcomeSkipped.OK())
	assert.True(t, OutcomeSucceeded.OK())
	assert.False(t, OutcomeFailed.OK())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
}

func TestRun_NotAttempted(t *testing.T) {
	t.Parallel()

	steps := []Step{&fakeStep{name: "a"}, &fakeStep{name: "b"}, &fakeStep{name: "c"}}
	run := newRun("local", steps, time.Now())
	run.record(NewRunResult(MustNewStepName("a"), OutcomeFailed, errDiskFull))

	assert.Equal(t, []StepName{MustNewStepName("b"), MustNewStepName("c")}, run.NotAttempted())
	assert.Len(t, run.Planned(), 3)
}
