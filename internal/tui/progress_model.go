package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/domain/report"
)

// StepStartMsg is sent when a step starts executing.
type StepStartMsg struct {
	Name provision.StepName
}

// StepFinishedMsg is sent when a step has a result.
type StepFinishedMsg struct {
	Result provision.RunResult
}

// RunDoneMsg is sent once the executor returns.
type RunDoneMsg struct{}

// progressModel is the Bubble Tea model for provisioning progress.
type progressModel struct {
	host        string
	steps       []provision.Step
	results     []provision.RunResult
	current     provision.StepName
	spinner     spinner.Model
	progressBar ProgressBar
	styles      Styles
	width       int
	failed      bool
	done        bool
	interrupted bool
}

func newProgressModel(host string, steps []provision.Step) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := DefaultStyles()
	s.Style = styles.Spinner

	return progressModel{
		host:        host,
		steps:       steps,
		results:     make([]provision.RunResult, 0, len(steps)),
		spinner:     s,
		progressBar: NewProgressBar(40),
		styles:      styles,
		width:       80,
	}
}

// Init starts the spinner.
func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.styles = m.styles.WithWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.interrupted = true
			return m, tea.Quit
		}

	case StepStartMsg:
		m.current = msg.Name
		return m, nil

	case StepFinishedMsg:
		m.results = append(m.results, msg.Result)
		m.current = provision.StepName{}
		if msg.Result.Failed() {
			m.failed = true
		}
		return m, nil

	case RunDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the model.
func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Provisioning " + m.host))
	b.WriteString("\n")

	total := len(m.steps)
	if total > 0 {
		b.WriteString(m.progressBar.SetPercent(float64(len(m.results)) / float64(total)).View())
		b.WriteString("\n\n")
	}

	for _, r := range m.results {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.icon(r.Outcome()), r.Name().String()))
		if r.Failed() {
			b.WriteString(m.styles.Error.Render("      " + r.Reason()))
			b.WriteString("\n")
		}
	}

	if !m.current.IsZero() && !m.done {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), m.styles.Info.Render(m.current.String())))
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("%d/%d steps  Ctrl+C to abort", len(m.results), total)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m progressModel) icon(o provision.Outcome) string {
	switch o {
	case provision.OutcomeSucceeded:
		return m.styles.Success.Render("✓")
	case provision.OutcomeSkipped:
		return m.styles.Help.Render("-")
	case provision.OutcomeFailed:
		return m.styles.Error.Render("✗")
	}
	return "?"
}

// label is the title-cased outcome used in summaries.
func label(o provision.Outcome) string {
	return report.Label(o.String())
}
