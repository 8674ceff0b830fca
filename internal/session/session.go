// Package session holds the process-wide authentication state: at most one
// live store and one flag, guarded as a single unit.
package session

import (
	"context"
	"sync"

	"watchlist-gateway/internal/models"
)

// Store is the set of watch list operations reachable through an
// authenticated connection pool.
type Store interface {
	ListItems(ctx context.Context, limit int) ([]models.WatchListItem, error)
	ItemExists(ctx context.Context, name string, mediaType models.MediaType) (bool, error)
	InsertItem(ctx context.Context, item models.WatchListItem) (int64, error)
	DeleteItems(ctx context.Context, ids []int) (int64, error)
	Close() error
}

// Session guards the (store, authenticated) pair with a single mutex so the
// two can never be observed out of step. The mutex is never held across a
// network call: mutators swap under lock and hand any displaced store back
// to the caller, which closes it outside the lock.
type Session struct {
	mu            sync.Mutex
	store         Store
	authenticated bool
}

// New returns a Session in its initial, unauthenticated state.
func New() *Session {
	return &Session{}
}

// Replace installs a freshly verified store, marks the session
// authenticated, and returns whatever store was previously held (nil if
// none). Closing the previous store is the caller's job.
func (s *Session) Replace(store Store) (prev Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.store
	s.store = store
	s.authenticated = true
	return prev
}

// Clear returns the session to its initial state and hands back the held
// store, if any, for the caller to close. Safe to call when already
// unauthenticated.
func (s *Session) Clear() (prev Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.store
	s.store = nil
	s.authenticated = false
	return prev
}

// Store returns the held store if and only if the session is authenticated.
func (s *Session) Store() (Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated || s.store == nil {
		return nil, false
	}
	return s.store, true
}

// Authenticated reports whether a verified pool is currently held.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}
