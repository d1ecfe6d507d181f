package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/natea/berserk2/internal/model"
)

// GetOrCreateActorByFullName resolves a free-text full name to an actor,
// creating one if the normalized name has not been seen before. The
// returned flag reports whether a new actor was created.
func (s *SQLiteStore) GetOrCreateActorByFullName(
	ctx context.Context,
	fullName string,
) (model.Actor, bool, error) {
	normalized := model.NormalizeFullName(fullName)
	if normalized == "" {
		return model.Actor{}, false, fmt.Errorf("resolving actor: empty name")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Actor{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	actor, err := getActorByNormalizedName(ctx, tx, normalized)
	if err == nil {
		return actor, false, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Actor{}, false, fmt.Errorf("querying actor %q: %w", fullName, err)
	}

	actor = model.Actor{
		ID:        uuid.New().String(),
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO actors (id, full_name, normalized_name, email, created_at)
		VALUES (?, ?, ?, '', ?)`,
		actor.ID, actor.FullName, normalized, actor.CreatedAt,
	)
	if err != nil {
		return model.Actor{}, false, fmt.Errorf("creating actor %q: %w", fullName, err)
	}

	return actor, true, tx.Commit()
}

// GetActorByID retrieves a single actor by its ID.
func (s *SQLiteStore) GetActorByID(
	ctx context.Context,
	id string,
) (model.Actor, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT id, full_name, email, created_at FROM actors WHERE id = ?", id,
	)

	var a model.Actor
	if err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.CreatedAt); err != nil {
		return model.Actor{}, fmt.Errorf("getting actor %s: %w", id, err)
	}

	return a, nil
}

// ListActors retrieves every known actor ordered by full name.
func (s *SQLiteStore) ListActors(ctx context.Context) ([]model.Actor, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, full_name, email, created_at FROM actors ORDER BY full_name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying actors: %w", err)
	}
	defer rows.Close()

	var actors []model.Actor
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FullName, &a.Email, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning actor row: %w", err)
		}
		actors = append(actors, a)
	}

	return actors, rows.Err()
}

// SetActorEmail records an actor's address for reminder delivery.
func (s *SQLiteStore) SetActorEmail(ctx context.Context, id, email string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE actors SET email = ? WHERE id = ?", email, id,
	)
	if err != nil {
		return fmt.Errorf("setting email for actor %s: %w", id, err)
	}
	return nil
}

func getActorByNormalizedName(
	ctx context.Context,
	tx *sqlx.Tx,
	normalized string,
) (model.Actor, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT id, full_name, email, created_at FROM actors WHERE normalized_name = ?",
		normalized,
	)

	var a model.Actor
	err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.CreatedAt)
	return a, err
}
