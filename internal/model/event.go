package model

import "time"

// Source name constants for event provenance.
const (
	SourceFogBugz = "FogBugz"
	SourceGitHub  = "GitHub"
)

// Message placeholder tokens. Event messages are stored as templates and
// substituted at display time, so task links can be rendered against
// whatever tracker URL is current when the timeline is viewed.
const (
	PlaceholderProtagonist   = "{{ protagonist }}"
	PlaceholderDeuteragonist = "{{ deuteragonist }}"
	PlaceholderProtoSelf     = "{{ proto_self }}"
	PlaceholderTaskLink      = "{{ task_link }}"
)

// Event is one durable entry on the activity timeline. Events are
// append-only: they are never updated or deleted, and repeated emission of
// identical content creates distinct records.
type Event struct {
	// ID is the internal unique identifier for this event.
	ID string `json:"id"`

	// Source names the system the event came from (SourceFogBugz,
	// SourceGitHub).
	Source string `json:"source"`

	// ProtagonistID references the actor who performed the action.
	// Empty when the notification named nobody.
	ProtagonistID string `json:"protagonist_id"`

	// DeuteragonistID references a secondary actor (e.g. an assignee).
	DeuteragonistID string `json:"deuteragonist_id"`

	// Message is the narration template, containing the Placeholder*
	// tokens rather than rendered names or links.
	Message string `json:"message"`

	// Comment is the free-text commentary that accompanied the change,
	// comment lines joined with newlines. Empty, never null.
	Comment string `json:"comment"`

	// TaskID references the tracked work item, when one was resolved.
	TaskID string `json:"task_id"`

	// Date is when the notified action happened.
	Date time.Time `json:"date"`
}
