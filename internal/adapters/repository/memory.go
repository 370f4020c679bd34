package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobscout/internal/domain/model"
)

// InMemoryStore keeps saved searches in process memory. It backs tests and
// deployments without a database.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[string]*model.SavedSearch
	order []string
	now   func() time.Time
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		items: make(map[string]*model.SavedSearch),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements Store.
func (s *InMemoryStore) Create(_ context.Context, in model.SavedSearch) (model.SavedSearch, error) {
	if err := in.Validate(); err != nil {
		return model.SavedSearch{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	in.ID = uuid.NewString()
	in.Active = true
	in.CreatedAt = s.now().UTC()
	in.LastRunAt = nil
	in.LastTotal, in.NewJobs = 0, 0

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := in
	s.items[in.ID] = &stored
	s.order = append(s.order, in.ID)
	return in, nil
}

// ListActive implements Store.
func (s *InMemoryStore) ListActive(context.Context) ([]model.SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SavedSearch, 0, len(s.order))
	for _, id := range s.order {
		if item := s.items[id]; item.Active {
			out = append(out, *item)
		}
	}
	return out, nil
}

// RecordRun implements Store.
func (s *InMemoryStore) RecordRun(_ context.Context, id string, total, newJobs int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	at = at.UTC()
	item.LastRunAt = &at
	item.LastTotal = total
	item.NewJobs = newJobs
	return nil
}

// Close implements Store.
func (s *InMemoryStore) Close() {}
