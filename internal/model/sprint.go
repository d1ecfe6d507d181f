package model

import (
	"fmt"
	"time"
)

// BugTracker holds the connection settings for one remote tracker
// backend. The first configured tracker is the default target for tasks
// referenced by notifications.
type BugTracker struct {
	// ID is the internal unique identifier for this tracker.
	ID string `json:"id"`

	// Name is the user-defined label for this tracker instance.
	Name string `json:"name"`

	// Product is the tracker product/project to monitor.
	Product string `json:"product"`

	// BaseURL is the tracker root URL, without a trailing slash.
	BaseURL string `json:"base_url"`

	// Backend names the tracker client implementation to use.
	Backend string `json:"backend"`

	// Username authenticates snapshot requests. The password is kept in
	// the system keyring, not here.
	Username string `json:"username"`
}

// RemoteTaskURL returns the tracker page for a task's case number.
func (t BugTracker) RemoteTaskURL(remoteID string) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%s", t.BaseURL, remoteID)
}

// Sprint is a work iteration: a date range plus a velocity, the number of
// expected work-hours per day.
type Sprint struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Velocity  int       `json:"velocity"`
}

// IsActive reports whether the given day falls inside the sprint.
func (s Sprint) IsActive(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}

// IterationDays returns the number of absolute days between the sprint's
// start and end dates.
func (s Sprint) IterationDays() int {
	return int(s.EndDate.Sub(s.StartDate).Hours() / 24)
}
