package model

import (
	"strings"
	"time"
)

// Actor is a person referenced by the timeline: a reporter, assignee or
// commenter. Actors are created lazily the first time a full name is seen
// and are never mutated or deleted afterwards.
type Actor struct {
	// ID is the internal unique identifier for this actor.
	ID string `json:"id"`

	// FullName is the display name and the natural key: resolving the
	// same normalized name twice yields the same actor.
	FullName string `json:"full_name"`

	// Email is the actor's address, if known. Used by the hours reminder.
	Email string `json:"email"`

	// CreatedAt is when the actor was first seen.
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeFullName collapses inner whitespace, trims, and lowercases a
// free-text name so that "Jane  Doe " and "jane doe" resolve identically.
func NormalizeFullName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
