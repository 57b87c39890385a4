package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/components"
	"github.com/mrsinham/dicomsift/internal/copier"
	"github.com/mrsinham/dicomsift/internal/preview"
	"github.com/mrsinham/dicomsift/internal/series"
)

// previewCols is the width of the terminal preview in columns.
const previewCols = 32

// PreviewMsg carries a rendered preview for Path.
type PreviewMsg struct {
	Path string
	View string
	Err  error
}

// RenderPreview renders path for the terminal.
func RenderPreview(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := preview.Render(path)
		return PreviewMsg{Path: path, View: preview.Terminal(img, previewCols), Err: err}
	}
}

// SeriesAction is what the user asked for on the series screen.
type SeriesAction int

const (
	SeriesNone SeriesAction = iota
	SeriesCopy
	SeriesBack
)

// SeriesScreen lists the indexed series with a search box, a multi-selection and a preview
// of one file of the series under the cursor.
type SeriesScreen struct {
	table    *series.Table
	filter   textinput.Model
	visible  []string
	cursor   int
	selected map[string]bool

	previewIndex int
	previewPath  string
	previewView  string

	status    string
	action    SeriesAction
	cancelled bool
	height    int
}

// NewSeriesScreen creates a series screen over table.
func NewSeriesScreen(table *series.Table) *SeriesScreen {
	ti := textinput.New()
	ti.Placeholder = "type to filter series"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	s := &SeriesScreen{
		table:    table,
		filter:   ti,
		selected: make(map[string]bool),
	}
	s.applyFilter()
	return s
}

// Init implements tea.Model
func (s *SeriesScreen) Init() tea.Cmd {
	return s.resetPreview()
}

// Update implements tea.Model
func (s *SeriesScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.height = msg.Height
		return s, nil
	case PreviewMsg:
		if msg.Path == s.previewPath {
			s.previewView = msg.View
		}
		return s, nil
	case tea.KeyMsg:
		if s.filter.Focused() {
			return s.updateFilter(msg)
		}
		return s.updateList(msg)
	}
	return s, nil
}

func (s *SeriesScreen) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		s.cancelled = true
		return s, tea.Quit
	case "enter", "esc", "down":
		s.filter.Blur()
		return s, nil
	}

	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	before := s.currentUID()
	s.applyFilter()
	if s.currentUID() != before {
		return s, tea.Batch(cmd, s.resetPreview())
	}
	return s, cmd
}

func (s *SeriesScreen) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		s.cancelled = true
		return s, tea.Quit
	case "esc", "b":
		s.action = SeriesBack
	case "/":
		return s, s.filter.Focus()
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
			return s, s.resetPreview()
		}
	case "down", "j":
		if s.cursor < len(s.visible)-1 {
			s.cursor++
			return s, s.resetPreview()
		}
	case " ", "x":
		if uid := s.currentUID(); uid != "" {
			s.selected[uid] = !s.selected[uid]
		}
	case "a":
		all := true
		for _, uid := range s.visible {
			all = all && s.selected[uid]
		}
		for _, uid := range s.visible {
			s.selected[uid] = !all
		}
	case "[", "shift+up", "pgup":
		return s, s.stepPreview(-1)
	case "]", "shift+down", "pgdown":
		return s, s.stepPreview(1)
	case "enter", "c":
		if len(s.Selected()) == 0 {
			s.status = copier.ErrEmptySelection.Error()
			return s, nil
		}
		s.action = SeriesCopy
	}
	return s, nil
}

// applyFilter recomputes the visible rows. Selections hidden by the filter are dropped.
func (s *SeriesScreen) applyFilter() {
	s.visible = series.Filter(s.table, s.filter.Value())
	shown := make(map[string]bool, len(s.visible))
	for _, uid := range s.visible {
		shown[uid] = true
	}
	for uid := range s.selected {
		if !shown[uid] {
			delete(s.selected, uid)
		}
	}
	if s.cursor >= len(s.visible) {
		s.cursor = max(len(s.visible)-1, 0)
	}
}

func (s *SeriesScreen) currentUID() string {
	if s.cursor < len(s.visible) {
		return s.visible[s.cursor]
	}
	return ""
}

func (s *SeriesScreen) currentRecord() *series.Record {
	rec, _ := s.table.Get(s.currentUID())
	return rec
}

// resetPreview shows the middle file of the series under the cursor.
func (s *SeriesScreen) resetPreview() tea.Cmd {
	rec := s.currentRecord()
	if rec == nil || len(rec.Files) == 0 {
		s.previewPath, s.previewView = "", ""
		return nil
	}
	s.previewIndex = preview.MiddleIndex(len(rec.Files))
	return s.loadPreview(rec)
}

// stepPreview moves the previewed file by delta within the series.
func (s *SeriesScreen) stepPreview(delta int) tea.Cmd {
	rec := s.currentRecord()
	if rec == nil || len(rec.Files) == 0 {
		return nil
	}
	next := preview.Step(s.previewIndex, delta, len(rec.Files))
	if next == s.previewIndex {
		return nil
	}
	s.previewIndex = next
	return s.loadPreview(rec)
}

func (s *SeriesScreen) loadPreview(rec *series.Record) tea.Cmd {
	s.previewPath = rec.Files[s.previewIndex]
	s.previewView = components.DimStyle.Render("Loading preview...")
	return RenderPreview(s.previewPath)
}

// View implements tea.Model
func (s *SeriesScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	var list strings.Builder
	if len(s.visible) == 0 {
		list.WriteString(components.DimStyle.Render("No series match."))
		list.WriteString("\n")
	}
	for i, uid := range s.windowed() {
		rec, _ := s.table.Get(uid)
		box := "[ ]"
		if s.selected[uid] {
			box = components.SelectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, series.Label(rec))
		if i+s.offset() == s.cursor {
			line = components.CursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.filter.View(),
		"",
		list.String(),
		components.SubtitleStyle.Render(fmt.Sprintf("%d of %d series shown, %d selected",
			len(s.visible), s.table.Len(), len(s.Selected()))),
	)

	var right string
	if rec := s.currentRecord(); rec != nil && s.previewPath != "" {
		right = lipgloss.JoinVertical(lipgloss.Left,
			components.PreviewStyle.Render(s.previewView),
			components.DimStyle.Render(fmt.Sprintf("File %d/%d", s.previewIndex+1, len(rec.Files))),
		)
	}

	parts := []string{
		components.TitleStyle.Render("DICOMSIFT - Series"),
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	}
	if s.status != "" {
		parts = append(parts, errorTitleStyle.Render(s.status))
	}
	parts = append(parts, components.HintStyle.Render(
		"/: Search | Space: Select | a: All | [/]: Scroll preview | Enter: Copy | b: Back | q: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// listHeight is the number of series rows that fit on screen.
func (s *SeriesScreen) listHeight() int {
	if s.height <= 12 {
		return 20
	}
	return s.height - 10
}

func (s *SeriesScreen) offset() int {
	h := s.listHeight()
	if s.cursor < h {
		return 0
	}
	return s.cursor - h + 1
}

func (s *SeriesScreen) windowed() []string {
	start := s.offset()
	end := min(start+s.listHeight(), len(s.visible))
	return s.visible[start:end]
}

// Selected returns the selected UIDs in table order.
func (s *SeriesScreen) Selected() []string {
	var out []string
	for _, uid := range s.table.UIDs() {
		if s.selected[uid] {
			out = append(out, uid)
		}
	}
	return out
}

// Visible returns the UIDs matching the current filter.
func (s *SeriesScreen) Visible() []string {
	return s.visible
}

// PreviewPath returns the file currently previewed.
func (s *SeriesScreen) PreviewPath() string {
	return s.previewPath
}

// Action returns the pending action, SeriesNone if none.
func (s *SeriesScreen) Action() SeriesAction {
	return s.action
}

// ClearAction resets the pending action after the caller handled it.
func (s *SeriesScreen) ClearAction() {
	s.action = SeriesNone
}

// Cancelled returns true if the user cancelled
func (s *SeriesScreen) Cancelled() bool {
	return s.cancelled
}
