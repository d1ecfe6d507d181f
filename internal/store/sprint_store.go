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

// CreateSprint stores a new sprint.
func (s *SQLiteStore) CreateSprint(ctx context.Context, sp model.Sprint) (model.Sprint, error) {
	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	if sp.Velocity == 0 {
		sp.Velocity = 6
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sprints (id, start_date, end_date, velocity)
		VALUES (?, ?, ?, ?)`,
		sp.ID, sp.StartDate.UTC(), sp.EndDate.UTC(), sp.Velocity,
	)
	if err != nil {
		return model.Sprint{}, fmt.Errorf("creating sprint: %w", err)
	}

	return sp, nil
}

// CurrentSprint returns the sprint whose date range contains the given
// day, or false if none is active.
func (s *SQLiteStore) CurrentSprint(ctx context.Context, day time.Time) (model.Sprint, bool, error) {
	d := day.UTC().Truncate(24 * time.Hour)
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, start_date, end_date, velocity
		FROM sprints
		WHERE start_date <= ? AND end_date >= ?
		ORDER BY end_date DESC
		LIMIT 1`, d, d,
	)

	var sp model.Sprint
	err := row.Scan(&sp.ID, &sp.StartDate, &sp.EndDate, &sp.Velocity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Sprint{}, false, nil
	}
	if err != nil {
		return model.Sprint{}, false, fmt.Errorf("getting current sprint: %w", err)
	}

	return sp, true, nil
}

// UpsertTracker stores a tracker entry keyed by name, preserving its ID
// when the name is already known. Position fixes the configured order;
// position zero is the default tracker.
func (s *SQLiteStore) UpsertTracker(ctx context.Context, t model.BugTracker, position int) (model.BugTracker, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.BugTracker{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.GetContext(ctx, &existingID, "SELECT id FROM bug_trackers WHERE name = ?", t.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.BugTracker{}, fmt.Errorf("querying tracker %q: %w", t.Name, err)
	}

	if existingID != "" {
		t.ID = existingID
	} else if t.ID == "" {
		t.ID = uuid.New().String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bug_trackers (id, name, product, base_url, backend, username, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			product = excluded.product,
			base_url = excluded.base_url,
			backend = excluded.backend,
			username = excluded.username,
			position = excluded.position`,
		t.ID, t.Name, t.Product, t.BaseURL, t.Backend, t.Username, position,
	)
	if err != nil {
		return model.BugTracker{}, fmt.Errorf("upserting tracker %q: %w", t.Name, err)
	}

	return t, tx.Commit()
}

// ListTrackers returns the configured trackers in position order; the
// first entry is the default tracker for new task references.
func (s *SQLiteStore) ListTrackers(ctx context.Context) ([]model.BugTracker, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, name, product, base_url, backend, username
		FROM bug_trackers ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying trackers: %w", err)
	}
	defer rows.Close()

	var trackers []model.BugTracker
	for rows.Next() {
		var t model.BugTracker
		err := rows.Scan(&t.ID, &t.Name, &t.Product, &t.BaseURL, &t.Backend, &t.Username)
		if err != nil {
			return nil, fmt.Errorf("scanning tracker row: %w", err)
		}
		trackers = append(trackers, t)
	}

	return trackers, rows.Err()
}

// GetTrackerByID retrieves a single tracker.
func (s *SQLiteStore) GetTrackerByID(ctx context.Context, id string) (model.BugTracker, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, name, product, base_url, backend, username
		FROM bug_trackers WHERE id = ?`, id,
	)

	var t model.BugTracker
	err := row.Scan(&t.ID, &t.Name, &t.Product, &t.BaseURL, &t.Backend, &t.Username)
	if err != nil {
		return model.BugTracker{}, fmt.Errorf("getting tracker %s: %w", id, err)
	}

	return t, nil
}
