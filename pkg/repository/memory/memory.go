package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
)

// Store is the in-memory ActionStore backend for development and tests.
// A single mutex makes every operation, including CompareAndTransition,
// trivially atomic. Expired records are evicted lazily on read; the index
// membership of an evicted record is left behind on Get-driven eviction so
// that index reads exercise the same self-healing path the production
// backend relies on.
type Store struct {
	mu      sync.Mutex
	records map[types.ActionID]*model.PendingAction
	indexes map[model.IndexKey]map[types.ActionID]struct{}
	now     func() time.Time
}

var _ interfaces.ActionStore = &Store{}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		records: make(map[types.ActionID]*model.PendingAction),
		indexes: make(map[model.IndexKey]map[types.ActionID]struct{}),
		now:     time.Now,
	}
}

func (s *Store) Put(ctx context.Context, action *model.PendingAction, ttl time.Duration, indexes []model.IndexKey) error {
	if err := action.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid action ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := action.Clone()
	if ttl > 0 {
		stored.ExpiresAt = s.now().UTC().Add(ttl)
	}
	s.records[action.ID] = stored

	for _, index := range indexes {
		members, ok := s.indexes[index]
		if !ok {
			members = make(map[types.ActionID]struct{})
			s.indexes[index] = members
		}
		members[action.ID] = struct{}{}
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id types.ActionID) (*model.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
	}

	if record.IsExpired(s.now()) {
		// Lazy eviction. Index membership is intentionally not cleaned up
		// here; GetByIndex prunes it on its next read.
		delete(s.records, id)
		return nil, goerr.Wrap(types.ErrRecordExpired, "action TTL elapsed", goerr.V("id", id))
	}

	return record.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id types.ActionID, indexes []model.IndexKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
	}

	delete(s.records, id)
	for _, index := range indexes {
		if members, ok := s.indexes[index]; ok {
			delete(members, id)
		}
	}

	return nil
}

func (s *Store) CompareAndTransition(ctx context.Context, id types.ActionID, cond interfaces.TransitionCondition, apply func(*model.PendingAction)) (*model.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
	}

	if cond.Owner != "" && record.OwnerID != cond.Owner {
		return nil, goerr.Wrap(types.ErrOwnerMismatch, "action belongs to another user",
			goerr.V("id", id))
	}
	if cond.FromStatus != "" && record.Status != cond.FromStatus {
		return nil, goerr.Wrap(types.ErrStatusConflict, "action is not in the required status",
			goerr.V("id", id), goerr.V("status", record.Status), goerr.V("required", cond.FromStatus))
	}
	if !cond.Now.IsZero() && record.IsExpired(cond.Now) {
		return nil, goerr.Wrap(types.ErrRecordExpired, "action TTL elapsed", goerr.V("id", id))
	}

	updated := record.Clone()
	apply(updated)
	s.records[id] = updated

	return updated.Clone(), nil
}

func (s *Store) GetByIndex(ctx context.Context, index model.IndexKey) ([]*model.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.indexes[index]
	if !ok {
		return []*model.PendingAction{}, nil
	}

	now := s.now()
	result := make([]*model.PendingAction, 0, len(members))
	for id := range members {
		record, exists := s.records[id]
		if exists && record.IsExpired(now) {
			delete(s.records, id)
			exists = false
		}
		if !exists {
			// Dangling reference: the primary record is gone, so the index
			// entry heals itself on this read.
			delete(members, id)
			continue
		}
		result = append(result, record.Clone())
	}

	return result, nil
}

func (s *Store) RemoveFromIndex(ctx context.Context, index model.IndexKey, id types.ActionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if members, ok := s.indexes[index]; ok {
		delete(members, id)
	}
	return nil
}

func (s *Store) SetTTL(ctx context.Context, id types.ActionID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return goerr.Wrap(types.ErrRecordNotFound, "no such action", goerr.V("id", id))
	}

	record.ExpiresAt = s.now().UTC().Add(ttl)
	return nil
}

func (s *Store) Close() error {
	return nil
}
