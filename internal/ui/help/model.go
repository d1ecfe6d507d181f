package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/natea/berserk2/internal/keys"
	"github.com/natea/berserk2/internal/theme"
)

// Model is the key binding overlay shown over the timeline.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the root model handles dismissal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the full key binding list with a short note on what the
// timeline is showing.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("berserk keys")

	note := theme.HelpStyle.Render(
		"Events arrive from the FogBugz notification mailbox and pushed\n" +
			"commits. Polling runs in the background; r forces a poll now.")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	bindings := m.help.View(m.keys)

	content := lipgloss.JoinVertical(lipgloss.Left, title, bindings, "", note)

	return theme.BorderStyle.Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
