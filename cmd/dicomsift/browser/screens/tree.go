package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/components"
	"github.com/mrsinham/dicomsift/internal/browse"
)

// TreeScreen lets the user walk the folder tree and pick a leaf folder to index.
type TreeScreen struct {
	root      *browse.Node
	cursor    int
	chosen    *browse.Node
	status    string
	width     int
	height    int
	cancelled bool
}

// NewTreeScreen creates a tree screen rooted at root, with the root expanded.
func NewTreeScreen(root *browse.Node) *TreeScreen {
	s := &TreeScreen{root: root}
	if err := root.Expand(); err != nil {
		s.status = err.Error()
	}
	return s
}

// Init implements tea.Model
func (s *TreeScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *TreeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case tea.KeyMsg:
		visible := s.root.Visible()
		node := visible[s.cursor]
		s.status = ""

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			s.cancelled = true
			return s, tea.Quit
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(visible)-1 {
				s.cursor++
			}
		case "right", "l":
			if err := node.Expand(); err != nil {
				s.status = err.Error()
			}
		case "left", "h":
			if node.Expanded {
				node.Collapse()
			} else if node.Parent != nil {
				s.cursor = indexOf(s.root.Visible(), node.Parent)
			}
		case "enter", " ":
			if node.Leaf() {
				s.chosen = node
				return s, nil
			}
			if err := node.Toggle(); err != nil {
				s.status = err.Error()
			}
		}
	}
	return s, nil
}

func indexOf(nodes []*browse.Node, n *browse.Node) int {
	for i, v := range nodes {
		if v == n {
			return i
		}
	}
	return 0
}

// View implements tea.Model
func (s *TreeScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	var sb strings.Builder
	for i, n := range s.root.Visible() {
		marker := "  "
		switch {
		case n.Expandable() && n.Expanded:
			marker = "▾ "
		case n.Expandable():
			marker = "▸ "
		}
		line := strings.Repeat("  ", n.Depth) + marker + n.Name
		if i == s.cursor {
			line = components.CursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	parts := []string{
		components.TitleStyle.Render("DICOMSIFT - Choose a folder"),
		components.SubtitleStyle.Render(s.root.Path),
		sb.String(),
	}
	if s.status != "" {
		parts = append(parts, components.DimStyle.Render(s.status))
	}
	parts = append(parts, components.HintStyle.Render("↑/↓: Move | →/←: Expand/Collapse | Enter: Scan leaf folder | q: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Chosen returns the leaf picked for scanning, or nil.
func (s *TreeScreen) Chosen() *browse.Node {
	return s.chosen
}

// Reset clears the chosen leaf so the screen can be shown again.
func (s *TreeScreen) Reset() {
	s.chosen = nil
}

// Done returns true once a leaf folder was picked
func (s *TreeScreen) Done() bool {
	return s.chosen != nil
}

// Cancelled returns true if the user cancelled
func (s *TreeScreen) Cancelled() bool {
	return s.cancelled
}
