package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/natea/berserk2/internal/model"
)

// CreateEvent appends an event to the timeline. Events are append-only:
// no uniqueness constraint applies and identical content stored twice
// yields two records.
func (s *SQLiteStore) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, source, protagonist_id, deuteragonist_id,
			message, comment, task_id, date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.ProtagonistID, e.DeuteragonistID,
		e.Message, e.Comment, e.TaskID, e.Date.UTC(),
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}

	return e, nil
}

// EventFilter narrows ListEvents results.
type EventFilter struct {
	Source string
	TaskID string
	Limit  int
}

// ListEvents retrieves timeline events, most recent first.
func (s *SQLiteStore) ListEvents(
	ctx context.Context,
	filter EventFilter,
) ([]model.Event, error) {
	query := `
		SELECT id, source, protagonist_id, deuteragonist_id,
		       message, comment, task_id, date
		FROM events`

	var conditions []string
	var args []interface{}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.TaskID != "" {
		conditions = append(conditions, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += " ORDER BY date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		err := rows.Scan(
			&e.ID, &e.Source, &e.ProtagonistID, &e.DeuteragonistID,
			&e.Message, &e.Comment, &e.TaskID, &e.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// EventRow is an event joined with the display data needed to render it:
// resolved actor names and the remote tracker reference of the linked task.
type EventRow struct {
	Event             model.Event
	ProtagonistName   string
	DeuteragonistName string
	RemoteTrackerID   string
	TrackerBaseURL    string
}

// ListEventRows retrieves events with actor names and task references
// resolved, most recent first. Events whose actor or task reference is
// empty come back with empty display fields.
func (s *SQLiteStore) ListEventRows(
	ctx context.Context,
	filter EventFilter,
) ([]EventRow, error) {
	query := `
		SELECT e.id, e.source, e.protagonist_id, e.deuteragonist_id,
		       e.message, e.comment, e.task_id, e.date,
		       COALESCE(p.full_name, '') AS protagonist_name,
		       COALESCE(d.full_name, '') AS deuteragonist_name,
		       COALESCE(t.remote_tracker_id, '') AS remote_tracker_id,
		       COALESCE(bt.base_url, '') AS tracker_url
		FROM events e
		LEFT JOIN actors p ON p.id = e.protagonist_id
		LEFT JOIN actors d ON d.id = e.deuteragonist_id
		LEFT JOIN tasks t ON t.id = e.task_id
		LEFT JOIN bug_trackers bt ON bt.id = t.tracker_id`

	var conditions []string
	var args []interface{}
	if filter.Source != "" {
		conditions = append(conditions, "e.source = ?")
		args = append(args, filter.Source)
	}
	if filter.TaskID != "" {
		conditions = append(conditions, "e.task_id = ?")
		args = append(args, filter.TaskID)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += " ORDER BY e.date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying event rows: %w", err)
	}
	defer rows.Close()

	var result []EventRow
	for rows.Next() {
		var r EventRow
		err := rows.Scan(
			&r.Event.ID, &r.Event.Source, &r.Event.ProtagonistID,
			&r.Event.DeuteragonistID, &r.Event.Message, &r.Event.Comment,
			&r.Event.TaskID, &r.Event.Date,
			&r.ProtagonistName, &r.DeuteragonistName,
			&r.RemoteTrackerID, &r.TrackerBaseURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}
