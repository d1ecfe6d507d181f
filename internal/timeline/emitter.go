package timeline

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/natea/berserk2/internal/model"
)

// Store is the subset of the persistence layer the emitter needs.
type Store interface {
	GetOrCreateActorByFullName(ctx context.Context, fullName string) (model.Actor, bool, error)
	GetOrCreateTask(ctx context.Context, remoteTrackerID, trackerID string) (model.Task, bool, error)
	ListTrackers(ctx context.Context) ([]model.BugTracker, error)
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
}

// Refresher requests a fresh snapshot of a task from its tracker. The
// emitter treats it as best-effort: a refresh failure never blocks event
// emission.
type Refresher interface {
	RefreshSnapshot(ctx context.Context, task model.Task) error
}

// Draft is a narrated event produced by a rule engine, before actors and
// the task reference have been resolved.
type Draft struct {
	// Source names the system the fact came from.
	Source string

	// CaseID is the remote tracker case number the fact refers to.
	CaseID int

	// Protagonist is the free-text name of the acting person; empty when
	// the notification named nobody.
	Protagonist string

	// Deuteragonist is the free-text name of a secondary person.
	Deuteragonist string

	// Message is the narration template with unresolved placeholders.
	Message string

	// Comment holds the commentary lines accompanying the change.
	Comment []string

	// Date is when the notified action happened.
	Date time.Time

	// LinkTask controls whether the draft is tied to a tracked task.
	// Push events leave it false.
	LinkTask bool
}

// Emitter resolves a draft's actors and task reference and appends the
// resulting event to the timeline.
type Emitter struct {
	store     Store
	refresher Refresher
}

// NewEmitter creates an Emitter. refresher may be nil, in which case no
// snapshot refreshes are requested.
func NewEmitter(s Store, r Refresher) *Emitter {
	return &Emitter{store: s, refresher: r}
}

// Emit persists one draft as a timeline event.
//
// The task is resolved (or created) against the first configured tracker;
// with no tracker configured the event simply carries no task link. A
// snapshot refresh is requested on every task reference, not only on
// creation, and its failure is logged and swallowed. Emission is
// append-only: no deduplication is performed.
func (e *Emitter) Emit(ctx context.Context, d Draft) (model.Event, error) {
	var taskID string
	if d.LinkTask {
		trackers, err := e.store.ListTrackers(ctx)
		if err != nil {
			return model.Event{}, fmt.Errorf("listing trackers: %w", err)
		}

		if len(trackers) > 0 {
			task, _, err := e.store.GetOrCreateTask(
				ctx, strconv.Itoa(d.CaseID), trackers[0].ID,
			)
			if err != nil {
				return model.Event{}, fmt.Errorf("resolving task for case %d: %w", d.CaseID, err)
			}
			taskID = task.ID

			if e.refresher != nil {
				if err := e.refresher.RefreshSnapshot(ctx, task); err != nil {
					log.Printf("timeline: snapshot refresh for case %d failed: %v", d.CaseID, err)
				}
			}
		}
	}

	var protagonistID, deuteragonistID string
	if d.Protagonist != "" {
		actor, _, err := e.store.GetOrCreateActorByFullName(ctx, d.Protagonist)
		if err != nil {
			return model.Event{}, fmt.Errorf("resolving protagonist: %w", err)
		}
		protagonistID = actor.ID
	}
	if d.Deuteragonist != "" {
		actor, _, err := e.store.GetOrCreateActorByFullName(ctx, d.Deuteragonist)
		if err != nil {
			return model.Event{}, fmt.Errorf("resolving deuteragonist: %w", err)
		}
		deuteragonistID = actor.ID
	}

	return e.store.CreateEvent(ctx, model.Event{
		Source:          d.Source,
		ProtagonistID:   protagonistID,
		DeuteragonistID: deuteragonistID,
		Message:         d.Message,
		Comment:         strings.Join(d.Comment, "\n"),
		TaskID:          taskID,
		Date:            d.Date,
	})
}
