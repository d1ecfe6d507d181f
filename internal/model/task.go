package model

import "time"

// Task is a tracked work item, keyed by its identifier in the remote bug
// tracker. Tasks belong to zero or more sprints.
type Task struct {
	// ID is the internal unique identifier for this task.
	ID string `json:"id"`

	// RemoteTrackerID is the case number in the remote tracker.
	RemoteTrackerID string `json:"remote_tracker_id"`

	// TrackerID references the BugTracker the task lives in.
	TrackerID string `json:"tracker_id"`

	// CreatedAt is when the task was first referenced.
	CreatedAt time.Time `json:"created_at"`
}

// Statuses a tracker reports for a resolved task.
var closedStatuses = map[string]bool{
	"RESOLVED": true,
	"CLOSED":   true,
	"VERIFIED": true,
}

// TaskSnapshot captures the working data of a task at a point in time.
type TaskSnapshot struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	Date           time.Time `json:"date"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	AssignedToID   string    `json:"assigned_to_id"`
	SubmittedByID  string    `json:"submitted_by_id"`
	EstimatedHours int       `json:"estimated_hours"`
	ActualHours    int       `json:"actual_hours"`
	RemainingHours int       `json:"remaining_hours"`
}

// IsClosed reports whether the snapshot shows the task in a resolved state.
func (s TaskSnapshot) IsClosed() bool {
	return closedStatuses[s.Status]
}

// SnapshotCacheEntry records the last snapshot of a day for a task, the
// basis for sprint load aggregation.
type SnapshotCacheEntry struct {
	Date       time.Time `json:"date"`
	TaskID     string    `json:"task_id"`
	SnapshotID string    `json:"snapshot_id"`
}
