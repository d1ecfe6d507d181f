package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
	"github.com/natea/berserk2/tests/testutil"
)

func TestGetOrCreateTaskIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	trk := testutil.SeedTracker(t, s)

	first, created, err := s.GetOrCreateTask(ctx, "43355", trk.ID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !created {
		t.Error("expected first resolve to create")
	}

	second, created, err := s.GetOrCreateTask(ctx, "43355", trk.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if created {
		t.Error("second resolve created a duplicate")
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %q vs %q", first.ID, second.ID)
	}
}

func TestCreateSnapshotDayCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	trk := testutil.SeedTracker(t, s)

	task, _, err := s.GetOrCreateTask(ctx, "1", trk.ID)
	if err != nil {
		t.Fatalf("GetOrCreateTask: %v", err)
	}
	actor, _, err := s.GetOrCreateActorByFullName(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}

	sprint, err := s.CreateSprint(ctx, model.Sprint{
		StartDate: time.Date(2011, 4, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	if err := s.AddTaskToSprint(ctx, sprint.ID, task.ID); err != nil {
		t.Fatalf("AddTaskToSprint: %v", err)
	}

	day := time.Date(2011, 4, 12, 0, 0, 0, 0, time.UTC)

	// Morning snapshot, then an afternoon one: the cache keeps the later.
	_, err = s.CreateSnapshot(ctx, model.TaskSnapshot{
		TaskID:         task.ID,
		Date:           day.Add(9 * time.Hour),
		Status:         "ASSIGNED",
		AssignedToID:   actor.ID,
		RemainingHours: 8,
	})
	if err != nil {
		t.Fatalf("morning snapshot: %v", err)
	}
	_, err = s.CreateSnapshot(ctx, model.TaskSnapshot{
		TaskID:         task.ID,
		Date:           day.Add(16 * time.Hour),
		Status:         "ASSIGNED",
		AssignedToID:   actor.ID,
		RemainingHours: 5,
	})
	if err != nil {
		t.Fatalf("afternoon snapshot: %v", err)
	}

	rows, err := s.SumRemainingHoursByAssignee(ctx, sprint.ID, day)
	if err != nil {
		t.Fatalf("SumRemainingHoursByAssignee: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].RemainingHours != 5 {
		t.Errorf("remaining hours = %d, want 5 (latest of the day)", rows[0].RemainingHours)
	}
	if rows[0].TaskCount != 1 {
		t.Errorf("task count = %d, want 1", rows[0].TaskCount)
	}
}

// A snapshot arriving out of order never overwrites a newer same-day entry.
func TestCreateSnapshotOutOfOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	trk := testutil.SeedTracker(t, s)

	task, _, err := s.GetOrCreateTask(ctx, "1", trk.ID)
	if err != nil {
		t.Fatalf("GetOrCreateTask: %v", err)
	}
	actor, _, err := s.GetOrCreateActorByFullName(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}

	sprint, err := s.CreateSprint(ctx, model.Sprint{
		StartDate: time.Date(2011, 4, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	if err := s.AddTaskToSprint(ctx, sprint.ID, task.ID); err != nil {
		t.Fatalf("AddTaskToSprint: %v", err)
	}

	day := time.Date(2011, 4, 12, 0, 0, 0, 0, time.UTC)

	_, err = s.CreateSnapshot(ctx, model.TaskSnapshot{
		TaskID:         task.ID,
		Date:           day.Add(16 * time.Hour),
		AssignedToID:   actor.ID,
		RemainingHours: 5,
	})
	if err != nil {
		t.Fatalf("later snapshot: %v", err)
	}
	_, err = s.CreateSnapshot(ctx, model.TaskSnapshot{
		TaskID:         task.ID,
		Date:           day.Add(9 * time.Hour),
		AssignedToID:   actor.ID,
		RemainingHours: 8,
	})
	if err != nil {
		t.Fatalf("earlier snapshot: %v", err)
	}

	rows, err := s.SumRemainingHoursByAssignee(ctx, sprint.ID, day)
	if err != nil {
		t.Fatalf("SumRemainingHoursByAssignee: %v", err)
	}
	if len(rows) != 1 || rows[0].RemainingHours != 5 {
		t.Errorf("rows = %#v, want the 16:00 snapshot kept", rows)
	}
}

func TestSumRemainingHoursGroupsByAssignee(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	trk := testutil.SeedTracker(t, s)

	sprint, err := s.CreateSprint(ctx, model.Sprint{
		StartDate: time.Date(2011, 4, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}

	jane, _, err := s.GetOrCreateActorByFullName(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	john, _, err := s.GetOrCreateActorByFullName(ctx, "John Roe")
	if err != nil {
		t.Fatalf("actor: %v", err)
	}

	day := time.Date(2011, 4, 12, 0, 0, 0, 0, time.UTC)
	assignments := []struct {
		remoteID string
		actorID  string
		hours    int
	}{
		{"1", jane.ID, 4},
		{"2", jane.ID, 3},
		{"3", john.ID, 6},
		{"4", "", 9}, // unassigned tasks are excluded
	}

	for _, a := range assignments {
		task, _, err := s.GetOrCreateTask(ctx, a.remoteID, trk.ID)
		if err != nil {
			t.Fatalf("task %s: %v", a.remoteID, err)
		}
		if err := s.AddTaskToSprint(ctx, sprint.ID, task.ID); err != nil {
			t.Fatalf("membership %s: %v", a.remoteID, err)
		}
		_, err = s.CreateSnapshot(ctx, model.TaskSnapshot{
			TaskID:         task.ID,
			Date:           day.Add(12 * time.Hour),
			AssignedToID:   a.actorID,
			RemainingHours: a.hours,
		})
		if err != nil {
			t.Fatalf("snapshot %s: %v", a.remoteID, err)
		}
	}

	rows, err := s.SumRemainingHoursByAssignee(ctx, sprint.ID, day)
	if err != nil {
		t.Fatalf("SumRemainingHoursByAssignee: %v", err)
	}

	byActor := make(map[string]store.DayLoadRow)
	for _, r := range rows {
		byActor[r.AssignedToID] = r
	}
	if len(byActor) != 2 {
		t.Fatalf("assignees = %d, want 2", len(byActor))
	}
	if r := byActor[jane.ID]; r.RemainingHours != 7 || r.TaskCount != 2 {
		t.Errorf("jane row = %+v, want 7 hours over 2 tasks", r)
	}
	if r := byActor[john.ID]; r.RemainingHours != 6 || r.TaskCount != 1 {
		t.Errorf("john row = %+v, want 6 hours over 1 task", r)
	}
}

func TestGetLatestSnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	trk := testutil.SeedTracker(t, s)

	task, _, err := s.GetOrCreateTask(ctx, "1", trk.ID)
	if err != nil {
		t.Fatalf("GetOrCreateTask: %v", err)
	}

	day := time.Date(2011, 4, 12, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{"NEW", "ASSIGNED", "RESOLVED"} {
		_, err := s.CreateSnapshot(ctx, model.TaskSnapshot{
			TaskID: task.ID,
			Date:   day.Add(time.Duration(i) * time.Hour),
			Status: status,
		})
		if err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}

	snap, err := s.GetLatestSnapshot(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetLatestSnapshot: %v", err)
	}
	if snap.Status != "RESOLVED" {
		t.Errorf("status = %q, want RESOLVED", snap.Status)
	}
	if !snap.IsClosed() {
		t.Error("RESOLVED snapshot should count as closed")
	}
}
