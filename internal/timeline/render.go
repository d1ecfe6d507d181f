package timeline

import (
	"strings"

	"github.com/natea/berserk2/internal/model"
)

// RenderContext carries the resolved values the four placeholders expand
// to at display time.
type RenderContext struct {
	// Protagonist is the display name of the primary actor; empty
	// renders as empty, never as an error.
	Protagonist string

	// Deuteragonist is the display name of the secondary actor.
	Deuteragonist string

	// TaskLink is the rendered reference to the tracked work item;
	// empty when the event carries no task link.
	TaskLink string
}

// Render substitutes an event's message template against the context.
// Messages are stored with placeholders so link rendering can be
// deferred until the tracker URL is known.
func Render(message string, rc RenderContext) string {
	r := strings.NewReplacer(
		model.PlaceholderProtagonist, rc.Protagonist,
		model.PlaceholderDeuteragonist, rc.Deuteragonist,
		model.PlaceholderProtoSelf, "themselves",
		model.PlaceholderTaskLink, rc.TaskLink,
	)
	return r.Replace(message)
}
