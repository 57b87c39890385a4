package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/components"
	"github.com/mrsinham/dicomsift/internal/copier"
)

var (
	progressFileStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	progressElapsedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)

// ProgressScreen shows how many files of a folder have been examined.
type ProgressScreen struct {
	title     string
	bar       progress.Model
	current   int
	total     int
	path      string
	startTime time.Time
	cancelled bool
	width     int
}

// NewProgressScreen creates a progress screen titled title.
func NewProgressScreen(title string) *ProgressScreen {
	return &ProgressScreen{
		title:     title,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		startTime: time.Now(),
	}
}

// Init implements tea.Model
func (s *ProgressScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ProgressScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.cancelled = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.bar.Width = min(max(msg.Width/2, 20), 60)
	}
	return s, nil
}

// SetProgress updates the counters.
func (s *ProgressScreen) SetProgress(current, total int, path string) {
	s.current = current
	s.total = total
	s.path = path
}

// Percent returns the completed fraction in [0, 1].
func (s *ProgressScreen) Percent() float64 {
	if s.total <= 0 {
		return 0
	}
	return float64(s.current) / float64(s.total)
}

// View implements tea.Model
func (s *ProgressScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render(s.title))
	sb.WriteString("\n\n")
	sb.WriteString(s.bar.ViewAs(s.Percent()))
	sb.WriteString("\n\n")
	sb.WriteString(progressFileStyle.Render(fmt.Sprintf("File %d/%d", s.current, s.total)))
	if s.path != "" {
		display := s.path
		maxLen := max(s.bar.Width, 20)
		if len(display) > maxLen {
			display = "..." + display[len(display)-maxLen+3:]
		}
		sb.WriteString(": ")
		sb.WriteString(progressFileStyle.Render(display))
	}
	sb.WriteString("\n")
	sb.WriteString(progressElapsedStyle.Render(fmt.Sprintf("Elapsed: %.1fs", time.Since(s.startTime).Seconds())))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("Press Ctrl+C to quit"))
	return sb.String()
}

// Cancelled returns true if the user cancelled
func (s *ProgressScreen) Cancelled() bool {
	return s.cancelled
}

var (
	completionSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	completionLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	completionValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

// ResultAction is what the user chose after a copy.
type ResultAction int

const (
	ResultNone ResultAction = iota
	ResultBack
	ResultQuit
)

// CompletionScreen summarizes a finished copy, listing failed files if any.
type CompletionScreen struct {
	result      copier.Result
	destination string
	duration    time.Duration
	action      ResultAction
}

// NewCompletionScreen creates a new completion screen
func NewCompletionScreen(res copier.Result, destination string, duration time.Duration) *CompletionScreen {
	return &CompletionScreen{result: res, destination: destination, duration: duration}
}

// Init implements tea.Model
func (s *CompletionScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *CompletionScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "esc", "b":
			s.action = ResultBack
		case "ctrl+c", "q":
			s.action = ResultQuit
			return s, tea.Quit
		}
	}
	return s, nil
}

// View implements tea.Model
func (s *CompletionScreen) View() string {
	var sb strings.Builder

	if s.result.OK() {
		sb.WriteString(completionSuccessStyle.Render("✓ Copy complete!"))
	} else {
		sb.WriteString(errorTitleStyle.Render(fmt.Sprintf("✗ %d of %d files failed to copy", len(s.result.Failed), s.result.Planned)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(components.TitleStyle.Render("Summary:"))
	sb.WriteString("\n")

	stats := []struct {
		label string
		value string
	}{
		{"Files copied", fmt.Sprintf("%d", s.result.Copied)},
		{"Files failed", fmt.Sprintf("%d", len(s.result.Failed))},
		{"Duration", fmt.Sprintf("%.1fs", s.duration.Seconds())},
		{"Destination", s.destination},
	}
	for _, stat := range stats {
		sb.WriteString("  ")
		sb.WriteString(completionLabelStyle.Render(stat.label + ":"))
		sb.WriteString(" ")
		sb.WriteString(completionValueStyle.Render(stat.value))
		sb.WriteString("\n")
	}

	const maxListed = 10
	for i, f := range s.result.Failed {
		if i == maxListed {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.result.Failed)-maxListed))
			break
		}
		sb.WriteString("  ")
		sb.WriteString(errorMessageStyle.Render(f.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(components.HintStyle.Render("Enter: Back to series | q: Quit"))
	return sb.String()
}

// Action returns what the user chose, ResultNone while undecided.
func (s *CompletionScreen) Action() ResultAction {
	return s.action
}

// ErrorScreen displays an error and waits for the user to go back or quit.
type ErrorScreen struct {
	title  string
	err    error
	action ResultAction
}

// NewErrorScreen creates a new error screen
func NewErrorScreen(title string, err error) *ErrorScreen {
	return &ErrorScreen{title: title, err: err}
}

// Init implements tea.Model
func (s *ErrorScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ErrorScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "esc", "b":
			s.action = ResultBack
		case "ctrl+c", "q":
			s.action = ResultQuit
			return s, tea.Quit
		}
	}
	return s, nil
}

// View implements tea.Model
func (s *ErrorScreen) View() string {
	var sb strings.Builder
	sb.WriteString(errorTitleStyle.Render("✗ " + s.title))
	sb.WriteString("\n\n")
	sb.WriteString(components.TitleStyle.Render("Error:"))
	sb.WriteString("\n  ")
	sb.WriteString(errorMessageStyle.Render(s.err.Error()))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("Enter: Back | q: Quit"))
	return sb.String()
}

// Action returns what the user chose, ResultNone while undecided.
func (s *ErrorScreen) Action() ResultAction {
	return s.action
}

// Error returns the error
func (s *ErrorScreen) Error() error {
	return s.err
}
