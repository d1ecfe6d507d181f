package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/natea/berserk2/internal/keys"
	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
	appsync "github.com/natea/berserk2/internal/sync"
	"github.com/natea/berserk2/internal/ui"
	"github.com/natea/berserk2/internal/ui/eventlist"
	"github.com/natea/berserk2/internal/ui/help"
	"github.com/natea/berserk2/internal/ui/sprintload"
)

// View identifies which screen is currently active.
type View int

const (
	ViewTimeline View = iota
	ViewLoad
	ViewHelp
)

// pollDoneMsg signals that a polling iteration has completed.
type pollDoneMsg struct{}

// pollTickMsg drives the periodic background poll.
type pollTickMsg time.Time

// Model is the root application model. It owns the poller and dispatches
// to the timeline, sprint load and help views.
type Model struct {
	store  *store.SQLiteStore
	poller *appsync.Poller
	cfg    *model.AppConfig
	keys   *keys.KeyMap
	layout ui.Layout
	ready  bool

	currentView  View
	previousView View

	events  eventlist.Model
	load    sprintload.Model
	helpVw  help.Model
	polling bool
}

// New creates the root model. The poller is driven by this model, not
// started separately: iterations run inside tea commands so a finished
// poll can refresh the visible timeline.
func New(s *store.SQLiteStore, p *appsync.Poller, cfg *model.AppConfig) Model {
	k := keys.DefaultKeyMap()

	return Model{
		store:       s,
		poller:      p,
		cfg:         cfg,
		keys:        k,
		currentView: ViewTimeline,
		events:      eventlist.New(s, k, 80, 24),
		load:        sprintload.New(s, 80, 24),
		helpVw:      help.New(k, 80, 24),
	}
}

// Init loads the timeline and schedules the first background poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.events.Init(),
		m.schedulePoll(),
	)
}

// pollInterval returns the configured polling cadence.
func (m Model) pollInterval() time.Duration {
	if m.cfg.PollIntervalSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(m.cfg.PollIntervalSec) * time.Second
}

// schedulePoll arms the next background poll tick.
func (m Model) schedulePoll() tea.Cmd {
	return tea.Tick(m.pollInterval(), func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// runPoll executes one polling iteration off the UI goroutine.
func (m Model) runPoll() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		p.RunOnce(context.Background())
		return pollDoneMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.events.SetSize(w, h)
		m.load.SetSize(w, h)
		m.helpVw.SetSize(w, h)
		return m, nil

	case pollTickMsg:
		if m.polling {
			return m, m.schedulePoll()
		}
		m.polling = true
		return m, tea.Batch(m.runPoll(), m.schedulePoll())

	case pollDoneMsg:
		m.polling = false
		cmds := []tea.Cmd{m.events.LoadEvents()}
		if m.currentView == ViewLoad {
			cmds = append(cmds, m.load.LoadReport())
		}
		return m, tea.Batch(cmds...)

	case eventlist.EventsLoadedMsg:
		var cmd tea.Cmd
		m.events, cmd = m.events.Update(msg)
		return m, cmd

	case sprintload.LoadedMsg:
		var cmd tea.Cmd
		m.load, cmd = m.load.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

// handleKey processes global keybindings, then forwards to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView != ViewTimeline {
			m.currentView = ViewTimeline
		}
		return m, nil

	case key.Matches(msg, m.keys.Load):
		if m.currentView == ViewLoad {
			m.currentView = ViewTimeline
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewLoad
		return m, m.load.LoadReport()

	case key.Matches(msg, m.keys.Refresh):
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.runPoll()
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to whichever view is showing.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewTimeline:
		m.events, cmd = m.events.Update(msg)
	case ViewLoad:
		m.load, cmd = m.load.Update(msg)
	case ViewHelp:
		m.helpVw, cmd = m.helpVw.Update(msg)
	}
	return m, cmd
}

// View renders the full frame: header, active view, status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := ""
	if m.polling {
		status = "polling..."
	}

	header := m.layout.RenderHeader("berserk", status)

	var content string
	switch m.currentView {
	case ViewLoad:
		content = m.load.View()
	case ViewHelp:
		content = m.helpVw.View()
	default:
		content = m.events.View()
	}

	statusBar := m.layout.RenderStatusBar(
		"j/k move · r poll · l sprint load · 1/2 filter source · ? help · q quit",
	)

	return m.layout.RenderWithFrame(header, content, statusBar)
}
