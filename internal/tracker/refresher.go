package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/natea/berserk2/internal/model"
)

// Store is the subset of the persistence layer the refresher needs.
type Store interface {
	GetTrackerByID(ctx context.Context, id string) (model.BugTracker, error)
	GetOrCreateActorByFullName(ctx context.Context, fullName string) (model.Actor, bool, error)
	CreateSnapshot(ctx context.Context, snap model.TaskSnapshot) (model.TaskSnapshot, error)
}

// PasswordFunc resolves the password for a tracker, typically from the
// system keyring.
type PasswordFunc func(tracker model.BugTracker) string

// Refresher fetches a task's current remote state and stores it as a
// new snapshot. It satisfies the emitter's Refresher contract.
type Refresher struct {
	store     Store
	password  PasswordFunc
	newClient func(baseURL, username, password string) *Client
}

// NewRefresher creates a Refresher. password may be nil when trackers
// carry no credentials.
func NewRefresher(s Store, password PasswordFunc) *Refresher {
	return &Refresher{
		store:     s,
		password:  password,
		newClient: NewClient,
	}
}

// RefreshSnapshot polls the task's tracker and records a snapshot of
// its current working data. People named by the tracker are resolved
// through the actor store the same way notification names are.
func (r *Refresher) RefreshSnapshot(ctx context.Context, task model.Task) error {
	trk, err := r.store.GetTrackerByID(ctx, task.TrackerID)
	if err != nil {
		return fmt.Errorf("loading tracker for task %s: %w", task.ID, err)
	}

	password := ""
	if r.password != nil {
		password = r.password(trk)
	}

	client := r.newClient(trk.BaseURL, trk.Username, password)
	bug, err := client.GetBug(ctx, task.RemoteTrackerID)
	if err != nil {
		return fmt.Errorf("fetching case %s: %w", task.RemoteTrackerID, err)
	}

	snap := model.TaskSnapshot{
		TaskID:         task.ID,
		Date:           time.Now().UTC(),
		Title:          bug.Summary,
		Status:         bug.Status,
		EstimatedHours: int(bug.EstimatedHours),
		ActualHours:    int(bug.ActualHours),
		RemainingHours: int(bug.RemainingHours),
	}

	if bug.AssignedTo != "" {
		actor, _, err := r.store.GetOrCreateActorByFullName(ctx, bug.AssignedTo)
		if err != nil {
			return fmt.Errorf("resolving assignee: %w", err)
		}
		snap.AssignedToID = actor.ID
	}
	if bug.SubmittedBy != "" {
		actor, _, err := r.store.GetOrCreateActorByFullName(ctx, bug.SubmittedBy)
		if err != nil {
			return fmt.Errorf("resolving submitter: %w", err)
		}
		snap.SubmittedByID = actor.ID
	}

	if _, err := r.store.CreateSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("storing snapshot for task %s: %w", task.ID, err)
	}

	return nil
}
