package provision

import (
	"context"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/adapters/logging"
	"github.com/felixgeelhaar/hostprep/internal/domain/host/transport"
	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Executor runs steps in order against one target. It stops at the first
// failed action. There is no timeout, retry or rollback.
type Executor struct {
	logger   ports.Logger
	observer Observer
	now      func() time.Time
}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{
		observer: nopObserver{},
		now:      time.Now,
	}
}

// WithLogger returns an Executor that logs through logger. Without one the
// executor uses the logger in the context, if any.
func (e *Executor) WithLogger(logger ports.Logger) *Executor {
	return &Executor{
		logger:   logger,
		observer: e.observer,
		now:      e.now,
	}
}

// WithObserver returns an Executor that reports progress to o.
func (e *Executor) WithObserver(o Observer) *Executor {
	if o == nil {
		o = nopObserver{}
	}
	return &Executor{
		logger:   e.logger,
		observer: o,
		now:      e.now,
	}
}

func (e *Executor) log(ctx context.Context) ports.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.FromContext(ctx)
}

// Execute runs steps in order against target.
//
// For each step the precondition is evaluated first. A satisfied step is
// skipped. Otherwise the action runs; if it fails the run halts and later
// steps get no result. A precondition that cannot be evaluated is logged
// and treated as not satisfied.
func (e *Executor) Execute(ctx context.Context, target transport.Connection, steps []Step) *Run {
	logger := e.log(ctx).With(ports.F("host", target.Host().ID().String()))
	run := newRun(target.Host().ID().String(), steps, e.now())

	logger.Info(ctx, "provisioning started", ports.F("run", run.ID()), ports.F("steps", len(steps)))

	for _, step := range steps {
		result := e.executeStep(ctx, logger, target, step)
		run.record(result)
		e.observer.StepFinished(result)

		if result.Failed() {
			logger.Error(ctx, "provisioning halted",
				ports.F("step", result.Name()),
				ports.F("not_attempted", len(run.NotAttempted())))
			break
		}
	}

	run.finished = e.now()
	logger.Info(ctx, "provisioning finished",
		ports.F("run", run.ID()),
		ports.F("succeeded", run.Succeeded()),
		ports.F("duration", run.Duration().Round(time.Millisecond)))
	return run
}

func (e *Executor) executeStep(ctx context.Context, logger ports.Logger, target transport.Connection, step Step) RunResult {
	name := step.Name()
	logger = logger.With(ports.F("step", name))
	e.observer.StepStarted(name)

	lc, err := newLifecycle(name.String(), e.now)
	if err != nil {
		return NewRunResult(name, OutcomeFailed, NewActionFailedError(name.String(), err))
	}
	defer lc.stop()

	finish := func(event string, phase Phase, outcome Outcome, err error) RunResult {
		if advErr := lc.advance(event, phase); advErr != nil {
			return NewRunResult(name, OutcomeFailed, NewActionFailedError(name.String(), advErr))
		}
		return NewRunResult(name, outcome, err).WithDuration(lc.Elapsed())
	}

	if err := lc.advance(EventCheck, PhaseChecking); err != nil {
		return NewRunResult(name, OutcomeFailed, NewActionFailedError(name.String(), err))
	}

	satisfied, err := step.Satisfied(ctx, target)
	if err != nil {
		checkErr := NewPreconditionCheckError(name.String(), err)
		logger.Warn(ctx, "precondition check failed, treating as not satisfied", ports.F("error", checkErr.Reason()))
		satisfied = false
	}

	if satisfied {
		logger.Info(ctx, "step skipped", ports.F("reason", "precondition satisfied"))
		return finish(EventSatisfied, PhaseSkipped, OutcomeSkipped, nil)
	}

	if err := lc.advance(EventUnsatisfied, PhaseApplying); err != nil {
		return NewRunResult(name, OutcomeFailed, NewActionFailedError(name.String(), err))
	}

	logger.Debug(ctx, "applying step", ports.F("description", step.Description()))
	if err := step.Apply(ctx, target); err != nil {
		failure := NewActionFailedError(name.String(), err)
		result := finish(EventApplyFailed, PhaseFailed, OutcomeFailed, failure)
		logger.Error(ctx, "step failed", ports.F("error", failure.Reason()), ports.F("duration", result.Duration()))
		return result
	}

	result := finish(EventApplied, PhaseSucceeded, OutcomeSucceeded, nil)
	logger.Info(ctx, "step succeeded", ports.F("duration", result.Duration()))
	return result
}

// PlanEntry is the dry-run view of one step.
type PlanEntry struct {
	Name        StepName
	Description string
	Satisfied   bool
	CheckError  error
}

// Plan evaluates preconditions only; actions are never invoked. Entries
// come back in step order, one per step.
func (e *Executor) Plan(ctx context.Context, target transport.Connection, steps []Step) []PlanEntry {
	logger := e.log(ctx).With(ports.F("host", target.Host().ID().String()))
	entries := make([]PlanEntry, 0, len(steps))

	for _, step := range steps {
		entry := PlanEntry{Name: step.Name(), Description: step.Description()}
		satisfied, err := step.Satisfied(ctx, target)
		if err != nil {
			entry.CheckError = NewPreconditionCheckError(step.Name().String(), err)
			logger.Warn(ctx, "precondition check failed", ports.F("step", step.Name()), ports.F("error", err))
		} else {
			entry.Satisfied = satisfied
		}
		entries = append(entries, entry)
	}

	return entries
}
