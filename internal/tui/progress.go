package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
)

// ProgressView shows live provisioning progress while the executor runs on
// another goroutine. It implements provision.Observer.
type ProgressView struct {
	program *tea.Program
	done    chan struct{}
	final   progressModel
	err     error
}

// StartProgress starts the progress view on out. Call Finish after the
// executor returns.
func StartProgress(ctx context.Context, out io.Writer, host string, steps []provision.Step) *ProgressView {
	v := &ProgressView{done: make(chan struct{})}
	v.program = tea.NewProgram(newProgressModel(host, steps), tea.WithContext(ctx), tea.WithOutput(out))

	go func() {
		defer close(v.done)
		model, err := v.program.Run()
		if err != nil {
			v.err = fmt.Errorf("progress view failed: %w", err)
			return
		}
		if m, ok := model.(progressModel); ok {
			v.final = m
		}
	}()

	return v
}

// StepStarted implements provision.Observer.
func (v *ProgressView) StepStarted(name provision.StepName) {
	v.program.Send(StepStartMsg{Name: name})
}

// StepFinished implements provision.Observer.
func (v *ProgressView) StepFinished(result provision.RunResult) {
	v.program.Send(StepFinishedMsg{Result: result})
}

// Finish stops the view and waits until the terminal is restored.
func (v *ProgressView) Finish() error {
	v.program.Send(RunDoneMsg{})
	<-v.done
	return v.err
}

// Interrupted reports whether the user pressed Ctrl+C in the view. Only
// meaningful after the view has stopped.
func (v *ProgressView) Interrupted() bool {
	select {
	case <-v.done:
		return v.final.interrupted
	default:
		return false
	}
}

// Done is closed when the view has stopped.
func (v *ProgressView) Done() <-chan struct{} {
	return v.done
}

var _ provision.Observer = (*ProgressView)(nil)
