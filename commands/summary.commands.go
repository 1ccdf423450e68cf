package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pianoroll/midiprocessor"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// renderSummary formats one line per file and a totals line.
func renderSummary(results []midiprocessor.Result, s midiprocessor.Summary) string {
	width := 0
	for _, r := range results {
		width = max(width, lipgloss.Width(filepath.Base(r.Input)))
	}

	var b strings.Builder
	for _, r := range results {
		name := filepath.Base(r.Input)
		name += strings.Repeat(" ", width-lipgloss.Width(name))
		switch {
		case r.Err != nil:
			fmt.Fprintf(&b, "%s %s  %s\n", failStyle.Render("FAIL"), name, dimStyle.Render(midiprocessor.FailureReason(r.Err)+": "+r.Err.Error()))
		case r.Skipped:
			fmt.Fprintf(&b, "%s %s  %s\n", skipStyle.Render("SKIP"), name, dimStyle.Render(r.Location))
		default:
			fmt.Fprintf(&b, "%s %s  %s %s\n", okStyle.Render(" OK "), name, r.Location,
				dimStyle.Render(fmt.Sprintf("(tempo %d, %d holes, %s)", r.Tempo, r.Holes, r.Elapsed.Round(time.Millisecond))))
		}
	}
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("%d rendered, %d skipped, %d failed in %s",
		s.Rendered, s.Skipped, s.Failed, s.Elapsed.Round(time.Millisecond))))
	return b.String()
}
