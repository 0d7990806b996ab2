package workspace

import (
	"fmt"
	"sync"

	"github.com/web-terminal-gateway/backend/internal/logging"
)

// Repository persists workspace state. The second return of Load reports
// whether a persisted state existed.
type Repository interface {
	Load() (State, bool, error)
	Save(state State) error
}

// Store holds the authoritative workspace state, guarded by a mutex, and
// writes every accepted replacement through to the repository.
type Store struct {
	repo   Repository
	logger *logging.Logger

	mu    sync.Mutex
	state State
}

// NewStore loads the persisted workspace, sanitizing whatever was stored.
// A missing state starts empty.
func NewStore(repo Repository, logger *logging.Logger) (*Store, error) {
	store := &Store{repo: repo, logger: logger, state: Empty()}

	persisted, ok, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if ok {
		store.state = Sanitize(persisted)
	}
	return store, nil
}

// Current returns the stored workspace as-is.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restored returns the stored workspace re-attached to the given running
// terminal set.
func (s *Store) Restored(runningTerminals map[string]bool) State {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	return Restore(state, runningTerminals)
}

// Replace sanitizes a client-submitted workspace, makes it authoritative,
// and persists it. Persistence failures are logged, not surfaced: layout
// durability is best effort and the in-memory state already moved on.
func (s *Store) Replace(raw State) State {
	next := Sanitize(raw)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	if err := s.repo.Save(next); err != nil {
		s.logger.Warn("workspace persist failed", logging.Error(err))
	}
	return next
}
