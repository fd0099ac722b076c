package provision

import (
	"time"

	"github.com/google/uuid"
)

// Run is the record of one provisioning pass against one host.
type Run struct {
	id       string
	host     string
	planned  []StepName
	results  []RunResult
	started  time.Time
	finished time.Time
}

func newRun(hostID string, steps []Step, started time.Time) *Run {
	planned := make([]StepName, len(steps))
	for i, s := range steps {
		planned[i] = s.Name()
	}
	return &Run{
		id:      uuid.NewString(),
		host:    hostID,
		planned: planned,
		results: make([]RunResult, 0, len(steps)),
		started: started,
	}
}

// ID returns the unique run identifier.
func (r *Run) ID() string {
	return r.id
}

// Host returns the ID of the provisioned host.
func (r *Run) Host() string {
	return r.host
}

// Results returns the results of attempted steps, in execution order.
func (r *Run) Results() []RunResult {
	results := make([]RunResult, len(r.results))
	copy(results, r.results)
	return results
}

// Planned returns the names of all steps handed to the executor.
func (r *Run) Planned() []StepName {
	planned := make([]StepName, len(r.planned))
	copy(planned, r.planned)
	return planned
}

// NotAttempted returns the planned steps that have no result because an
// earlier step failed.
func (r *Run) NotAttempted() []StepName {
	if len(r.results) >= len(r.planned) {
		return nil
	}
	rest := make([]StepName, len(r.planned)-len(r.results))
	copy(rest, r.planned[len(r.results):])
	return rest
}

// Failure returns the failed result, if any. At most one step fails per run.
func (r *Run) Failure() (RunResult, bool) {
	for _, res := range r.results {
		if res.Failed() {
			return res, true
		}
	}
	return RunResult{}, false
}

// Succeeded returns true if no step failed.
func (r *Run) Succeeded() bool {
	_, failed := r.Failure()
	return !failed
}

// StartedAt returns when the run began.
func (r *Run) StartedAt() time.Time {
	return r.started
}

// FinishedAt returns when the run ended.
func (r *Run) FinishedAt() time.Time {
	return r.finished
}

// Duration returns the wall time of the run.
func (r *Run) Duration() time.Duration {
	return r.finished.Sub(r.started)
}

func (r *Run) record(result RunResult) {
	r.results = append(r.results, result)
}
