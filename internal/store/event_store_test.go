package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
	"github.com/natea/berserk2/tests/testutil"
)

func TestCreateEventAppendOnly(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	e := model.Event{
		Source:  model.SourceFogBugz,
		Message: "{{ protagonist }} commented on {{ task_link }}.",
		Date:    time.Date(2011, 4, 12, 9, 0, 0, 0, time.UTC),
	}

	first, err := s.CreateEvent(ctx, e)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := s.CreateEvent(ctx, e)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID == second.ID {
		t.Error("identical events share an id")
	}

	events, err := s.ListEvents(ctx, store.EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events = %d, want 2", len(events))
	}
}

func TestListEventsFilterAndOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2011, 4, 12, 9, 0, 0, 0, time.UTC)
	for i, source := range []string{model.SourceFogBugz, model.SourceGitHub, model.SourceFogBugz} {
		_, err := s.CreateEvent(ctx, model.Event{
			Source:  source,
			Message: "m",
			Date:    base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	events, err := s.ListEvents(ctx, store.EventFilter{Source: model.SourceFogBugz})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("filtered events = %d, want 2", len(events))
	}
	if !events[0].Date.After(events[1].Date) {
		t.Errorf("events not newest-first: %v then %v", events[0].Date, events[1].Date)
	}

	limited, err := s.ListEvents(ctx, store.EventFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListEvents limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited events = %d, want 1", len(limited))
	}
}

func TestListEventRowsResolvesDisplayData(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	trk, err := s.UpsertTracker(ctx, model.BugTracker{
		Name:    "main",
		BaseURL: "http://bugs.example.com",
	}, 0)
	if err != nil {
		t.Fatalf("UpsertTracker: %v", err)
	}

	task, _, err := s.GetOrCreateTask(ctx, "43355", trk.ID)
	if err != nil {
		t.Fatalf("GetOrCreateTask: %v", err)
	}
	actor, _, err := s.GetOrCreateActorByFullName(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}

	_, err = s.CreateEvent(ctx, model.Event{
		Source:        model.SourceFogBugz,
		ProtagonistID: actor.ID,
		Message:       "{{ protagonist }} closed {{ task_link }}.",
		TaskID:        task.ID,
		Date:          time.Date(2011, 4, 12, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	rows, err := s.ListEventRows(ctx, store.EventFilter{})
	if err != nil {
		t.Fatalf("ListEventRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	r := rows[0]
	if r.ProtagonistName != "Jane Doe" {
		t.Errorf("protagonist name = %q", r.ProtagonistName)
	}
	if r.DeuteragonistName != "" {
		t.Errorf("deuteragonist name = %q, want empty", r.DeuteragonistName)
	}
	if r.RemoteTrackerID != "43355" {
		t.Errorf("remote tracker id = %q", r.RemoteTrackerID)
	}
	if r.TrackerBaseURL != "http://bugs.example.com" {
		t.Errorf("tracker base url = %q", r.TrackerBaseURL)
	}
}

// Events without actor or task references come back with empty display
// fields, not errors.
func TestListEventRowsUnlinkedEvent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, model.Event{
		Source:  model.SourceGitHub,
		Message: "{{ protagonist }} pushed x to y.",
		Date:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	rows, err := s.ListEventRows(ctx, store.EventFilter{})
	if err != nil {
		t.Fatalf("ListEventRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.ProtagonistName != "" || r.RemoteTrackerID != "" || r.TrackerBaseURL != "" {
		t.Errorf("display fields not empty: %#v", r)
	}
}
