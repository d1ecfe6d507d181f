// Package testutil provides shared helpers for store-backed tests.
package testutil

import (
	"context"
	"testing"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedTracker inserts a tracker at position 0, the slot task creation
// resolves against.
func SeedTracker(t *testing.T, s *store.SQLiteStore) model.BugTracker {
	t.Helper()

	trk, err := s.UpsertTracker(context.Background(), model.BugTracker{
		Name:    "main",
		BaseURL: "http://bugs.example.com",
	}, 0)
	if err != nil {
		t.Fatalf("UpsertTracker: %v", err)
	}
	return trk
}
