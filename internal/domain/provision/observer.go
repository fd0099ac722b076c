package provision

// Observer receives executor events, for live progress views.
// Callbacks run on the executor goroutine and should return quickly.
type Observer interface {
	StepStarted(name StepName)
	StepFinished(result RunResult)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Started  func(name StepName)
	Finished func(result RunResult)
}

// StepStarted calls Started if set.
func (o ObserverFuncs) StepStarted(name StepName) {
	if o.Started != nil {
		o.Started(name)
	}
}

// StepFinished calls Finished if set.
func (o ObserverFuncs) StepFinished(result RunResult) {
	if o.Finished != nil {
		o.Finished(result)
	}
}

type nopObserver struct{}

func (nopObserver) StepStarted(StepName)   {}
func (nopObserver) StepFinished(RunResult) {}
