// Package report turns a provisioning run into a summary and an exit status.
package report

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
)

// Exit statuses of a provisioning run.
const (
	ExitOK         = 0
	ExitStepFailed = 1
)

// NotAttempted labels steps that never ran because an earlier step failed.
const NotAttempted = "not attempted"

// StepLine is one row of the report.
type StepLine struct {
	Name       string `json:"name"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Summary aggregates a Run for display.
type Summary struct {
	RunID         string     `json:"run_id"`
	Host          string     `json:"host"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at"`
	DurationMS    int64      `json:"duration_ms"`
	Succeeded     int        `json:"succeeded"`
	Skipped       int        `json:"skipped"`
	Failed        int        `json:"failed"`
	NotAttempted  int        `json:"not_attempted"`
	FailedStep    string     `json:"failed_step,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Steps         []StepLine `json:"steps"`
	Pending       []string   `json:"pending,omitempty"`
}

// NewSummary counts outcomes of run.
func NewSummary(run *provision.Run) Summary {
	s := Summary{
		RunID:      run.ID(),
		Host:       run.Host(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
		DurationMS: run.Duration().Milliseconds(),
		Steps:      make([]StepLine, 0, len(run.Results())),
	}

	for _, r := range run.Results() {
		line := StepLine{
			Name:       r.Name().String(),
			Outcome:    r.Outcome().String(),
			DurationMS: r.Duration().Milliseconds(),
		}
		switch r.Outcome() {
		case provision.OutcomeSucceeded:
			s.Succeeded++
		case provision.OutcomeSkipped:
			s.Skipped++
		case provision.OutcomeFailed:
			s.Failed++
			line.Error = r.Reason()
			s.FailedStep = line.Name
			s.FailureReason = line.Error
		}
		s.Steps = append(s.Steps, line)
	}

	for _, name := range run.NotAttempted() {
		s.Pending = append(s.Pending, name.String())
	}
	s.NotAttempted = len(s.Pending)

	return s
}

// OK returns true if no step failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// ExitCode returns 0 when every attempted step succeeded or was skipped,
// 1 otherwise.
func (s Summary) ExitCode() int {
	if s.OK() {
		return ExitOK
	}
	return ExitStepFailed
}

// Attempted returns the number of steps that produced a result.
func (s Summary) Attempted() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// Label returns the display form of an outcome ("Succeeded").
func Label(outcome string) string {
	return cases.Title(language.English).String(outcome)
}
