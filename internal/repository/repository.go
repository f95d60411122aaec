package repository

import (
	"alcyxob/flexplan/internal/domain"
	"context"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInvalidValue = RepositoryError("invalid value")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SessionRepository keeps per-session state for the lifetime of a UI session.
// T is whatever the service layer hangs off a session (its orchestrator, transcript, ...).
type SessionRepository[T any] interface {
	// Create stores value under a freshly generated session ID.
	Create(ctx context.Context, value T) (domain.SessionInfo, error)
	// Get returns the value and bumps LastActiveAt.
	Get(ctx context.Context, id string) (T, domain.SessionInfo, error)
	Delete(ctx context.Context, id string) error
	// DeleteIdle drops every session whose LastActiveAt is before cutoff and reports how many went.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}
