package provision

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// Phase is a state of the per-step lifecycle.
type Phase string

// State identifiers of the lifecycle machine.
const (
	statePending   = "pending"
	stateChecking  = "checking"
	stateApplying  = "applying"
	stateSkipped   = "skipped"
	stateSucceeded = "succeeded"
	stateFailed    = "failed"
)

// Lifecycle phases. Skipped, Succeeded and Failed are terminal.
const (
	PhasePending   Phase = statePending
	PhaseChecking  Phase = stateChecking
	PhaseApplying  Phase = stateApplying
	PhaseSkipped   Phase = stateSkipped
	PhaseSucceeded Phase = stateSucceeded
	PhaseFailed    Phase = stateFailed
)

// Event types for the step lifecycle.
const (
	EventCheck       = "CHECK"
	EventSatisfied   = "SATISFIED"
	EventUnsatisfied = "UNSATISFIED"
	EventApplied     = "APPLIED"
	EventApplyFailed = "APPLY_FAILED"
)

// lifecycleContext is the statekit context of one step.
type lifecycleContext struct {
	Step     string
	Started  time.Time
	Finished time.Time
}

// lifecycle drives one step through pending -> checking -> {skipped |
// applying -> {succeeded | failed}}. Terminal phases accept no events, so a
// step cannot be checked or applied twice.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
	state  *lifecycleContext
	now    func() time.Time
}

func newLifecycle(step string, now func() time.Time) (*lifecycle, error) {
	lc := &lifecycle{
		state: &lifecycleContext{Step: step},
		now:   now,
	}

	machine, err := statekit.NewMachine[lifecycleContext]("step-lifecycle").
		WithInitial(statePending).
		WithContext(*lc.state).
		WithAction("markStarted", func(_ *lifecycleContext, _ statekit.Event) {
			lc.state.Started = lc.now()
		}).
		WithAction("markFinished", func(_ *lifecycleContext, _ statekit.Event) {
			lc.state.Finished = lc.now()
		}).
		State(statePending).
		On(EventCheck).Target(stateChecking).Done().
		State(stateChecking).
		OnEntry("markStarted").
		On(EventSatisfied).Target(stateSkipped).
		On(EventUnsatisfied).Target(stateApplying).Done().
		State(stateApplying).
		On(EventApplied).Target(stateSucceeded).
		On(EventApplyFailed).Target(stateFailed).Done().
		State(stateSkipped).
		OnEntry("markFinished").Done().
		State(stateSucceeded).
		OnEntry("markFinished").Done().
		State(stateFailed).
		OnEntry("markFinished").Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle for step %q: %w", step, err)
	}

	lc.interp = statekit.NewInterpreter(machine)
	lc.interp.Start()
	return lc, nil
}

// Phase returns the current phase.
func (lc *lifecycle) Phase() Phase {
	return Phase(lc.interp.State().Value)
}

// advance sends event and fails unless the machine lands in want.
func (lc *lifecycle) advance(event string, want Phase) error {
	from := lc.Phase()
	lc.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	if got := lc.Phase(); got != want {
		return fmt.Errorf("step %q: %s not allowed in phase %s", lc.state.Step, event, from)
	}
	return nil
}

// Elapsed returns the time between entering checking and reaching a
// terminal phase.
func (lc *lifecycle) Elapsed() time.Duration {
	if lc.state.Started.IsZero() || lc.state.Finished.IsZero() {
		return 0
	}
	return lc.state.Finished.Sub(lc.state.Started)
}

func (lc *lifecycle) stop() {
	lc.interp.Stop()
}
