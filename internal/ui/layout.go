// Package ui holds the frame layout shared by the timeline views.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/natea/berserk2/internal/theme"
)

// Layout tracks the terminal dimensions and the fixed chrome rows
// (header on top, status bar at the bottom).
type Layout struct {
	Width  int
	Height int
}

const chromeRows = 2

func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to the active view.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows available between header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - chromeRows
}

// RenderHeader renders the title bar, with a status fragment (for example
// "polling...") pushed to the right edge.
func (l Layout) RenderHeader(title string, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(status)

	middle := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if middle < 0 {
		middle = 0
	}
	pad := theme.HeaderStyle.Width(middle).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, pad, right)
}

// RenderStatusBar renders the key hint line across the full width.
func (l Layout) RenderStatusBar(hints string) string {
	return theme.StatusBarStyle.Width(l.Width).Render(hints)
}

// RenderWithFrame stacks header, content and status bar into one frame.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
