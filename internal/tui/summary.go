package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
	"github.com/felixgeelhaar/hostprep/internal/domain/report"
)

// RenderSummary renders a run summary for a terminal.
func RenderSummary(s report.Summary) string {
	styles := DefaultStyles()
	var b strings.Builder

	b.WriteString(styles.Title.Render("Provisioning " + s.Host))
	b.WriteString("\n")

	for _, line := range s.Steps {
		outcome := provision.Outcome(line.Outcome)
		style := styles.Help
		switch outcome {
		case provision.OutcomeSucceeded:
			style = styles.Success
		case provision.OutcomeFailed:
			style = styles.Error
		case provision.OutcomeSkipped:
		}

		b.WriteString(fmt.Sprintf("  %s %s", style.Render(fmt.Sprintf("%-13s", label(outcome))), line.Name))
		if line.DurationMS > 0 {
			b.WriteString(styles.Help.Render(fmt.Sprintf("  %s", time.Duration(line.DurationMS)*time.Millisecond)))
		}
		b.WriteString("\n")
		if line.Error != "" {
			b.WriteString(styles.Error.Render("                " + line.Error))
			b.WriteString("\n")
		}
	}
	for _, name := range s.Pending {
		b.WriteString(fmt.Sprintf("  %s %s\n", styles.Help.Render(fmt.Sprintf("%-13s", report.Label(report.NotAttempted))), name))
	}

	b.WriteString("\n")
	totals := report.Totals(s)
	if s.OK() {
		b.WriteString(styles.Success.Render(totals))
	} else {
		b.WriteString(styles.Error.Render(totals))
	}
	b.WriteString("\n")

	return styles.Panel.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
