package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/components"
	"github.com/mrsinham/dicomsift/internal/copier"
)

// NamingValues are the fields edited on the naming screen.
type NamingValues struct {
	Naming      string // policy name accepted by copier.ParsePolicy
	CustomName  string
	Prefix      string
	Destination string
}

// NamingScreen asks how series folders are named and where they are copied.
type NamingScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel
	values    *NamingValues
	count     int
	done      bool
	cancelled bool
}

// NewNamingScreen creates a naming form for count selected series, prefilled from values.
func NewNamingScreen(values *NamingValues, count int) *NamingScreen {
	if values.Naming == "" {
		values.Naming = copier.PolicyOriginal.String()
	}

	s := &NamingScreen{
		helpPanel: components.NewHelpPanel(),
		values:    values,
		count:     count,
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("naming").
				Title("Folder naming").
				Options(
					huh.NewOption("Original - series description", copier.PolicyOriginal.String()),
					huh.NewOption("Custom - one name for all series", copier.PolicyCustom.String()),
					huh.NewOption("Prefixed - prefix + description", copier.PolicyPrefixed.String()),
				).
				Value(&values.Naming),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("custom").
				Title("Custom folder name").
				Value(&values.CustomName),
		).WithHideFunc(func() bool { return values.Naming != copier.PolicyCustom.String() }),
		huh.NewGroup(
			huh.NewInput().
				Key("prefix").
				Title("Prefix").
				Placeholder("e.g., CT_").
				Value(&values.Prefix),
		).WithHideFunc(func() bool { return values.Naming != copier.PolicyPrefixed.String() }),
		huh.NewGroup(
			huh.NewInput().
				Key("destination").
				Title("Destination folder").
				Description("Leave empty to cancel").
				Value(&values.Destination),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

// Init implements tea.Model
func (s *NamingScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *NamingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			s.cancelled = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.helpPanel.SetWidth(msg.Width / 2)
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if focused := s.form.GetFocusedField(); focused != nil {
		s.helpPanel.SetField(focused.GetKey())
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}
	if s.form.State == huh.StateAborted {
		s.cancelled = true
	}
	return s, cmd
}

// View implements tea.Model
func (s *NamingScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("DICOMSIFT - Copy series")
	subtitle := components.SubtitleStyle.Render(pluralSeries(s.count) + " selected")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		s.form.View(),
		"",
		s.helpPanel.View(),
		"",
		components.HintStyle.Render("Tab: Next field | Enter: Submit | Esc: Back"),
	)
}

func pluralSeries(n int) string {
	if n == 1 {
		return "1 series"
	}
	return fmt.Sprintf("%d series", n)
}

// Values returns the edited values.
func (s *NamingScreen) Values() NamingValues {
	return *s.values
}

// Done returns true if the form was completed
func (s *NamingScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user backed out
func (s *NamingScreen) Cancelled() bool {
	return s.cancelled
}
