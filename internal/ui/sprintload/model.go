package sprintload

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/report"
	"github.com/natea/berserk2/internal/store"
	"github.com/natea/berserk2/internal/theme"
)

// LoadedMsg is sent when the sprint load report has been computed.
type LoadedMsg struct {
	Sprint model.Sprint
	Active bool
	// Load maps actor full names to per-day remaining hours.
	Load map[string][]int
	Err  error
}

// Model renders the current sprint's per-user remaining hours grid.
type Model struct {
	store  *store.SQLiteStore
	sprint model.Sprint
	active bool
	load   map[string][]int
	err    error
	width  int
	height int
}

// New creates a sprint load view backed by the given store.
func New(s *store.SQLiteStore, width, height int) Model {
	return Model{store: s, width: width, height: height}
}

// Init computes the report for the current sprint.
func (m Model) Init() tea.Cmd {
	return m.LoadReport()
}

// Update handles messages for the sprint load view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if loaded, ok := msg.(LoadedMsg); ok {
		m.sprint = loaded.Sprint
		m.active = loaded.Active
		m.load = loaded.Load
		m.err = loaded.Err
	}
	return m, nil
}

// LoadReport returns a tea.Cmd that computes the sprint load for today's
// sprint, with actor IDs resolved to full names.
func (m Model) LoadReport() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()

		sprint, ok, err := s.CurrentSprint(ctx, time.Now().UTC())
		if err != nil {
			return LoadedMsg{Err: err}
		}
		if !ok {
			return LoadedMsg{Active: false}
		}

		byID, err := report.SprintLoadByUser(ctx, s, sprint)
		if err != nil {
			return LoadedMsg{Err: err}
		}

		byName := make(map[string][]int, len(byID))
		for id, hours := range byID {
			actor, err := s.GetActorByID(ctx, id)
			if err != nil {
				return LoadedMsg{Err: err}
			}
			byName[actor.FullName] = hours
		}

		return LoadedMsg{Sprint: sprint, Active: true, Load: byName}
	}
}

// View renders the load grid: one row per actor, one column per sprint day.
func (m Model) View() string {
	if m.err != nil {
		return theme.HelpStyle.Render("sprint load unavailable: " + m.err.Error())
	}
	if !m.active {
		return theme.HelpStyle.
			Width(m.width).
			Height(m.height).
			Render("No active sprint.")
	}

	days := m.sprint.IterationDays()

	var b strings.Builder
	title := fmt.Sprintf(
		"Sprint %s – %s (velocity %d h/day)",
		m.sprint.StartDate.Format("Jan 02"),
		m.sprint.EndDate.Format("Jan 02"),
		m.sprint.Velocity,
	)
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-24s", "")
	for day := 0; day < days; day++ {
		header += fmt.Sprintf("%5s", m.sprint.StartDate.AddDate(0, 0, day).Format("01/02"))
		header += " "
	}
	b.WriteString(theme.HelpStyle.Render(header))
	b.WriteString("\n")

	names := sortedNames(m.load)
	for _, name := range names {
		row := lipgloss.NewStyle().Foreground(theme.ColorWhite).
			Render(fmt.Sprintf("%-24s", truncate(name, 24)))
		for _, hours := range m.load[name] {
			cell := fmt.Sprintf("%5d", hours)
			row += theme.LoadStyle(hours, m.sprint.Velocity).Render(cell)
			row += " "
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(names) == 0 {
		b.WriteString(theme.HelpStyle.Render("No assigned tasks in this sprint."))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// sortedNames returns map keys in a stable order.
func sortedNames(load map[string][]int) []string {
	names := make([]string, 0, len(load))
	for name := range load {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// truncate shortens a name to fit its column.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
