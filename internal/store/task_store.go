package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/natea/berserk2/internal/model"
)

// GetOrCreateTask resolves a remote tracker case number to a task within
// the given tracker, creating the task on first reference. The returned
// flag reports whether a new task was created.
func (s *SQLiteStore) GetOrCreateTask(
	ctx context.Context,
	remoteTrackerID string,
	trackerID string,
) (model.Task, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Task{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, `
		SELECT id, remote_tracker_id, tracker_id, created_at
		FROM tasks WHERE remote_tracker_id = ? AND tracker_id = ?`,
		remoteTrackerID, trackerID,
	)

	var t model.Task
	err = row.Scan(&t.ID, &t.RemoteTrackerID, &t.TrackerID, &t.CreatedAt)
	if err == nil {
		return t, false, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, false, fmt.Errorf("querying task %s: %w", remoteTrackerID, err)
	}

	t = model.Task{
		ID:              uuid.New().String(),
		RemoteTrackerID: remoteTrackerID,
		TrackerID:       trackerID,
		CreatedAt:       time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, remote_tracker_id, tracker_id, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.RemoteTrackerID, t.TrackerID, t.CreatedAt,
	)
	if err != nil {
		return model.Task{}, false, fmt.Errorf("creating task %s: %w", remoteTrackerID, err)
	}

	return t, true, tx.Commit()
}

// GetTaskByID retrieves a single task.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, remote_tracker_id, tracker_id, created_at
		FROM tasks WHERE id = ?`, id,
	)

	var t model.Task
	if err := row.Scan(&t.ID, &t.RemoteTrackerID, &t.TrackerID, &t.CreatedAt); err != nil {
		return model.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}

	return t, nil
}

// AddTaskToSprint records sprint membership for a task. Adding twice is
// a no-op.
func (s *SQLiteStore) AddTaskToSprint(ctx context.Context, sprintID, taskID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO sprint_tasks (sprint_id, task_id) VALUES (?, ?)`,
		sprintID, taskID,
	)
	if err != nil {
		return fmt.Errorf("adding task %s to sprint %s: %w", taskID, sprintID, err)
	}
	return nil
}

// CreateSnapshot stores a new snapshot of a task's working data and
// updates the per-day cache so later sprint load aggregation can read
// the last snapshot of each day.
func (s *SQLiteStore) CreateSnapshot(
	ctx context.Context,
	snap model.TaskSnapshot,
) (model.TaskSnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.Date.IsZero() {
		snap.Date = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.TaskSnapshot{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_snapshots (
			id, task_id, date, title, status,
			assigned_to_id, submitted_by_id,
			estimated_hours, actual_hours, remaining_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.TaskID, snap.Date.UTC(), snap.Title, snap.Status,
		snap.AssignedToID, snap.SubmittedByID,
		snap.EstimatedHours, snap.ActualHours, snap.RemainingHours,
	)
	if err != nil {
		return model.TaskSnapshot{}, fmt.Errorf("creating snapshot for task %s: %w", snap.TaskID, err)
	}

	day := snap.Date.UTC().Truncate(24 * time.Hour)

	// If the cache already holds a newer snapshot for this day, keep it.
	var newerCount int
	err = tx.GetContext(ctx, &newerCount, `
		SELECT COUNT(*)
		FROM task_snapshot_cache c
		JOIN task_snapshots ts ON ts.id = c.snapshot_id
		WHERE c.date = ? AND c.task_id = ? AND ts.date > ?`,
		day, snap.TaskID, snap.Date.UTC(),
	)
	if err != nil {
		return model.TaskSnapshot{}, fmt.Errorf("checking snapshot cache: %w", err)
	}

	if newerCount == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO task_snapshot_cache (date, task_id, snapshot_id)
			VALUES (?, ?, ?)
			ON CONFLICT(date, task_id) DO UPDATE SET snapshot_id = excluded.snapshot_id`,
			day, snap.TaskID, snap.ID,
		)
		if err != nil {
			return model.TaskSnapshot{}, fmt.Errorf("updating snapshot cache: %w", err)
		}
	}

	return snap, tx.Commit()
}

// GetLatestSnapshot returns the most recent snapshot of a task, or
// sql.ErrNoRows wrapped if none exist.
func (s *SQLiteStore) GetLatestSnapshot(
	ctx context.Context,
	taskID string,
) (model.TaskSnapshot, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, task_id, date, title, status,
		       assigned_to_id, submitted_by_id,
		       estimated_hours, actual_hours, remaining_hours
		FROM task_snapshots
		WHERE task_id = ?
		ORDER BY date DESC
		LIMIT 1`, taskID,
	)

	var snap model.TaskSnapshot
	err := row.Scan(
		&snap.ID, &snap.TaskID, &snap.Date, &snap.Title, &snap.Status,
		&snap.AssignedToID, &snap.SubmittedByID,
		&snap.EstimatedHours, &snap.ActualHours, &snap.RemainingHours,
	)
	if err != nil {
		return model.TaskSnapshot{}, fmt.Errorf("getting latest snapshot for task %s: %w", taskID, err)
	}

	return snap, nil
}

// DayLoadRow is one aggregation row: an assignee's cached end-of-day
// task count and total remaining hours.
type DayLoadRow struct {
	AssignedToID   string `db:"assigned_to_id"`
	TaskCount      int    `db:"task_count"`
	RemainingHours int    `db:"remaining_hours"`
}

// SumRemainingHoursByAssignee totals the remaining hours per assignee
// from the end-of-day snapshot cache, restricted to one sprint's tasks
// and one calendar day.
func (s *SQLiteStore) SumRemainingHoursByAssignee(
	ctx context.Context,
	sprintID string,
	day time.Time,
) ([]DayLoadRow, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT ts.assigned_to_id AS assigned_to_id,
		       COUNT(*) AS task_count,
		       SUM(ts.remaining_hours) AS remaining_hours
		FROM task_snapshot_cache c
		JOIN task_snapshots ts ON ts.id = c.snapshot_id
		JOIN sprint_tasks st ON st.task_id = c.task_id
		WHERE c.date = ? AND st.sprint_id = ? AND ts.assigned_to_id != ''
		GROUP BY ts.assigned_to_id`,
		day.UTC().Truncate(24*time.Hour), sprintID,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating sprint load: %w", err)
	}
	defer rows.Close()

	var result []DayLoadRow
	for rows.Next() {
		var r DayLoadRow
		if err := rows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("scanning load row: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}
