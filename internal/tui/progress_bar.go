package tui

import (
	"fmt"
	"strings"
)

// ProgressBar renders a fixed-width completion bar.
type ProgressBar struct {
	percent float64
	width   int
	styles  Styles
}

// NewProgressBar creates a bar of the given width, brackets included.
func NewProgressBar(width int) ProgressBar {
	if width < 3 {
		width = 3
	}
	return ProgressBar{
		width:  width,
		styles: DefaultStyles(),
	}
}

// SetPercent sets the progress percentage, clamped to 0..1.
func (p ProgressBar) SetPercent(percent float64) ProgressBar {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	p.percent = percent
	return p
}

// Percent returns the current percentage (0.0 to 1.0).
func (p ProgressBar) Percent() float64 {
	return p.percent
}

// View renders the bar followed by the percentage.
func (p ProgressBar) View() string {
	barWidth := p.width - 2
	filled := int(p.percent * float64(barWidth))

	bar := fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
	)
	return p.styles.ProgressBar.Render(bar) + fmt.Sprintf(" %3.0f%%", p.percent*100)
}
