package provision

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/stretchr/testify/require"
)

// fakeStep records how often its precondition and action were invoked.
type fakeStep struct {
	name      string
	satisfied bool
	checkErr  error
	applyErr  error
	journal   *journal

	mu      sync.Mutex
	checks  int
	applies int
}

func (s *fakeStep) Name() StepName      { return MustNewStepName(s.name) }
func (s *fakeStep) Description() string { return "fake " + s.name }

func (s *fakeStep) Satisfied(_ context.Context, _ transport.Connection) (bool, error) {
	s.mu.Lock()
	s.checks++
	s.mu.Unlock()
	s.journal.add("check " + s.name)
	return s.satisfied, s.checkErr
}

func (s *fakeStep) Apply(_ context.Context, _ transport.Connection) error {
	s.mu.Lock()
	s.applies++
	s.mu.Unlock()
	s.journal.add("apply " + s.name)
	return s.applyErr
}

func (s *fakeStep) counts() (checks, applies int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks, s.applies
}

// journal records the order in which steps were touched.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// recorder is an Observer that keeps every event.
type recorder struct {
	started  []string
	finished []RunResult
}

func (r *recorder) StepStarted(name StepName)     { r.started = append(r.started, name.String()) }
func (r *recorder) StepFinished(result RunResult) { r.finished = append(r.finished, result) }

func outcomes(run *Run) map[string]Outcome {
	m := make(map[string]Outcome)
	for _, r := range run.Results() {
		m[r.Name().String()] = r.Outcome()
	}
	return m
}

func mustStep(t *testing.T, name string, check CheckFunc, apply ApplyFunc) Step {
	t.Helper()
	s, err := NewStep(name, "", check, apply)
	require.NoError(t, err)
	return s
}

var errDiskFull = errors.New("disk full")
