package eventlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/natea/berserk2/internal/keys"
	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
	"github.com/natea/berserk2/internal/theme"
)

// defaultLimit caps how many events are loaded per query.
const defaultLimit = 200

// EventsLoadedMsg is sent when events have been loaded from the store.
type EventsLoadedMsg struct {
	Rows []store.EventRow
	Err  error
}

// Model is the timeline list view component.
type Model struct {
	list          list.Model
	store         *store.SQLiteStore
	keys          *keys.KeyMap
	sourceFilters map[string]bool
	width         int
	height        int
}

// New creates a new timeline list model.
func New(s *store.SQLiteStore, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.Title = "Timeline"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:          l,
		store:         s,
		keys:          k,
		sourceFilters: make(map[string]bool),
		width:         width,
		height:        height,
	}
}

// Init returns a command that loads the initial set of events.
func (m Model) Init() tea.Cmd {
	return m.LoadEvents()
}

// Update handles messages for the timeline view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventsLoadedMsg:
		items := make([]list.Item, len(msg.Rows))
		for i, row := range msg.Rows {
			items[i] = EventItem{Row: row}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.FilterFogBugz):
			m.toggleSourceFilter(model.SourceFogBugz)
			return m, m.LoadEvents()

		case key.Matches(msg, m.keys.FilterGitHub):
			m.toggleSourceFilter(model.SourceGitHub)
			return m, m.LoadEvents()
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleSourceFilter toggles a source filter on or off. When exactly one
// filter is active the query is narrowed to it, otherwise all events show.
func (m *Model) toggleSourceFilter(source string) {
	if m.sourceFilters[source] {
		delete(m.sourceFilters, source)
	} else {
		m.sourceFilters[source] = true
	}
}

// activeSource returns the single active source filter, or "" for all.
func (m Model) activeSource() string {
	var active []string
	for src, on := range m.sourceFilters {
		if on {
			active = append(active, src)
		}
	}
	if len(active) == 1 {
		return active[0]
	}
	return ""
}

// View renders the timeline view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return theme.HelpStyle.
			Width(m.width).
			Height(m.height).
			Render("No events yet. Press r to poll sources.")
	}
	return m.list.View()
}

// LoadEvents returns a tea.Cmd that queries the store with the current
// source filter.
func (m Model) LoadEvents() tea.Cmd {
	s := m.store
	filter := store.EventFilter{
		Source: m.activeSource(),
		Limit:  defaultLimit,
	}
	return func() tea.Msg {
		rows, err := s.ListEventRows(context.Background(), filter)
		return EventsLoadedMsg{Rows: rows, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
