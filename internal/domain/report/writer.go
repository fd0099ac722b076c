package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/provision"
)

// WriteText writes the summary as an aligned table followed by a totals line.
func WriteText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	//nolint:errcheck // Tabwriter errors are captured by Flush
	fmt.Fprintln(tw, "STEP\tOUTCOME\tDURATION\tDETAIL")

	for _, line := range s.Steps {
		//nolint:errcheck // Tabwriter errors are captured by Flush
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			line.Name,
			Label(line.Outcome),
			formatDuration(line.DurationMS),
			line.Error,
		)
	}
	for _, name := range s.Pending {
		//nolint:errcheck // Tabwriter errors are captured by Flush
		fmt.Fprintf(tw, "%s\t%s\t-\t\n", name, Label(NotAttempted))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, Totals(s))
	return err
}

// Totals returns the one-line run summary.
func Totals(s Summary) string {
	line := fmt.Sprintf("%s: %d succeeded, %d skipped, %d failed",
		s.Host, s.Succeeded, s.Skipped, s.Failed)
	if s.NotAttempted > 0 {
		line += fmt.Sprintf(", %d not attempted", s.NotAttempted)
	}
	return line + fmt.Sprintf(" (%s)", formatDuration(s.DurationMS))
}

// WriteJSON writes the summary as an indented JSON document.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// PlanLine is one row of a dry-run report.
type PlanLine struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action"`
	CheckError  string `json:"check_error,omitempty"`
}

// Plan actions.
const (
	ActionSkip  = "skip"
	ActionApply = "apply"
)

// NewPlan converts executor plan entries into report lines.
func NewPlan(entries []provision.PlanEntry) []PlanLine {
	lines := make([]PlanLine, len(entries))
	for i, e := range entries {
		lines[i] = PlanLine{
			Name:        e.Name.String(),
			Description: e.Description,
			Action:      ActionApply,
		}
		if e.Satisfied {
			lines[i].Action = ActionSkip
		}
		if e.CheckError != nil {
			lines[i].CheckError = e.CheckError.Error()
		}
	}
	return lines
}

// WritePlanText writes a dry-run table.
func WritePlanText(w io.Writer, lines []PlanLine) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	//nolint:errcheck // Tabwriter errors are captured by Flush
	fmt.Fprintln(tw, "STEP\tACTION\tDESCRIPTION")

	apply := 0
	for _, l := range lines {
		desc := l.Description
		if l.CheckError != "" {
			desc = "check failed: " + l.CheckError
		}
		if l.Action == ActionApply {
			apply++
		}
		//nolint:errcheck // Tabwriter errors are captured by Flush
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Action, desc)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d of %d steps would be applied\n", apply, len(lines))
	return err
}

// WritePlanJSON writes dry-run lines as an indented JSON array.
func WritePlanJSON(w io.Writer, lines []PlanLine) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lines)
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return d.String()
	}
	return d.Round(100 * time.Millisecond).String()
}
