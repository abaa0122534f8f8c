package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rusq/maxlines/internal/run"
)

var (
	summaryBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryLabel = lipgloss.NewStyle().Bold(true).Width(10)
	summaryBad   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// printSummary writes the run statistics to w, with colours and a border if
// styled is set.
func printSummary(w io.Writer, s run.Stats, styled bool) {
	rows := []struct {
		label string
		value int64
		bad   bool
	}{
		{"inputs", s.Inputs, false},
		{"batches", s.Batches, false},
		{"lines", s.Lines, false},
		{"failed", s.Failed, s.Failed > 0},
		{"abandoned", s.Abandoned, s.Abandoned > 0},
	}

	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if !styled {
			fmt.Fprintf(&sb, "%s: %d", r.label, r.value)
			continue
		}
		value := fmt.Sprint(r.value)
		if r.bad {
			value = summaryBad.Render(value)
		}
		sb.WriteString(summaryLabel.Render(r.label) + value)
	}
	if styled {
		fmt.Fprintln(w, summaryBox.Render(sb.String()))
		return
	}
	fmt.Fprintln(w, sb.String())
}
