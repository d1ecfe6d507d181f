package source

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates that authentication has failed for a source's
// transport (IMAP login, tracker login). It aborts the current polling
// iteration but is never fatal to the process.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Source, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Source defines the contract every timeline ingestion pipeline implements.
// A source converts external notifications into timeline events; the
// scheduler invokes Run once per polling iteration and only for sources
// whose Enabled reports true.
type Source interface {
	// Name returns the source name recorded on emitted events.
	Name() string

	// Enabled reports whether the source is configured and should run.
	Enabled() bool

	// Run executes a single polling iteration. Failures handling one
	// notification are absorbed and logged inside Run; transport-level
	// failures are returned and abort the iteration only.
	Run(ctx context.Context) error
}
