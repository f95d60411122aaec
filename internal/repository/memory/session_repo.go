// internal/repository/memory/session_repo.go
package memory

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/repository"
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry[T any] struct {
	info  domain.SessionInfo
	value T
}

// memorySessionRepository implements repository.SessionRepository with a guarded map.
// Nothing survives a restart.
type memorySessionRepository[T any] struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry[T]
	now      func() time.Time
}

// Option configures the repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository[T any](opts ...Option) repository.SessionRepository[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &memorySessionRepository[T]{
		sessions: make(map[string]*sessionEntry[T]),
		now:      o.now,
	}
}

// Create inserts a new session.
func (r *memorySessionRepository[T]) Create(ctx context.Context, value T) (domain.SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionInfo{}, err
	}
	if isNil(value) {
		return domain.SessionInfo{}, repository.ErrInvalidValue
	}

	now := r.now().UTC()
	info := domain.SessionInfo{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
	}

	r.mu.Lock()
	r.sessions[info.ID] = &sessionEntry[T]{info: info, value: value}
	r.mu.Unlock()
	return info, nil
}

// Get retrieves a session by its ID and marks it active.
func (r *memorySessionRepository[T]) Get(ctx context.Context, id string) (T, domain.SessionInfo, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, domain.SessionInfo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return zero, domain.SessionInfo{}, repository.ErrNotFound
	}
	entry.info.LastActiveAt = r.now().UTC()
	return entry.value, entry.info, nil
}

// Delete removes a session.
func (r *memorySessionRepository[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// DeleteIdle removes sessions that have not been used since cutoff.
func (r *memorySessionRepository[T]) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.sessions {
		if entry.info.LastActiveAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count reports how many sessions are held.
func (r *memorySessionRepository[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
