package eventlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
	"github.com/natea/berserk2/internal/theme"
	"github.com/natea/berserk2/internal/timeline"
)

// EventItem wraps a store.EventRow so it can be used in a bubbles/list.
type EventItem struct {
	Row store.EventRow
}

// FilterValue returns the string used for fuzzy filtering.
func (i EventItem) FilterValue() string {
	return i.RenderedMessage()
}

// RenderedMessage substitutes the event's message template with plain-text
// values suitable for a terminal.
func (i EventItem) RenderedMessage() string {
	link := ""
	if i.Row.RemoteTrackerID != "" {
		link = "case " + i.Row.RemoteTrackerID
	}
	return stripAnchors(timeline.Render(i.Row.Event.Message, timeline.RenderContext{
		Protagonist:   i.Row.ProtagonistName,
		Deuteragonist: i.Row.DeuteragonistName,
		TaskLink:      link,
	}))
}

// stripAnchors reduces HTML anchors to their inner text. Push-event
// messages embed commit links as anchors, which a terminal cannot follow.
func stripAnchors(s string) string {
	for {
		open := strings.Index(s, "<a ")
		if open < 0 {
			return s
		}
		tagEnd := strings.Index(s[open:], ">")
		if tagEnd < 0 {
			return s
		}
		closing := strings.Index(s, "</a>")
		if closing < 0 {
			return s
		}
		s = s[:open] + s[open+tagEnd+1:closing] + s[closing+len("</a>"):]
	}
}

// ItemDelegate implements list.ItemDelegate for rendering event lines.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single event line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EventItem)
	if !ok {
		return
	}

	srcBadge := theme.SourceLabelStyle(ei.Row.Event.Source).
		Render(sourceBadge(ei.Row.Event.Source))

	dateStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(ei.Row.Event.Date.Format("Jan 02 15:04"))

	commentMark := ""
	if ei.Row.Event.Comment != "" {
		commentMark = lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Render(" ✎")
	}

	line := fmt.Sprintf("%s %s  %s%s", srcBadge, dateStr, ei.RenderedMessage(), commentMark)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// sourceBadge returns the short label shown in front of an event line.
func sourceBadge(source string) string {
	switch source {
	case model.SourceFogBugz:
		return "FBZ"
	case model.SourceGitHub:
		return "GIT"
	default:
		return "???"
	}
}
