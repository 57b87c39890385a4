package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mrsinham/dicomsift/internal/series"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// isTerminal reports whether w is a terminal. Progress counters are only drawn on terminals.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// counter redraws "label done/total" on a single line.
type counter struct {
	w       io.Writer
	label   string
	enabled bool
}

func (a *app) counter(w io.Writer, label string) *counter {
	return &counter{w: w, label: label, enabled: !a.quiet && isTerminal(w)}
}

func (c *counter) update(done, total int) {
	if !c.enabled {
		return
	}
	fmt.Fprintf(c.w, "\r%s %d/%d", c.label, done, total)
	if done == total {
		fmt.Fprintln(c.w)
	}
}

func (c *counter) indexProgress(p series.Progress) {
	c.update(p.Done, p.Total)
}
