package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// InMemory is a map-backed pool store. Mutations made while a journal is in
// context are recorded so the in-memory transaction runner can undo them.
type InMemory struct {
	mu    sync.RWMutex
	pools map[id.PoolID]*models.Pool
}

func NewInMemory() *InMemory {
	return &InMemory{pools: make(map[id.PoolID]*models.Pool)}
}

func (s *InMemory) Create(ctx context.Context, p *models.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pools[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.pools[p.ID] = p.Clone()
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pools, p.ID)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, poolID id.PoolID) (*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[poolID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// FindByIDs returns the pools that exist; missing IDs are skipped.
func (s *InMemory) FindByIDs(_ context.Context, poolIDs []id.PoolID) (map[id.PoolID]*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.PoolID]*models.Pool, len(poolIDs))
	for _, pid := range poolIDs {
		if p, ok := s.pools[pid]; ok {
			out[pid] = p.Clone()
		}
	}
	return out, nil
}

func (s *InMemory) ListByCreator(_ context.Context, creatorID id.UserID) ([]*models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Pool
	for _, p := range s.pools {
		if p.CreatorID == creatorID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// LockForReservation reads the pool. Serialisation comes from the in-memory
// transaction runner, which admits one transaction at a time.
func (s *InMemory) LockForReservation(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	return s.FindByID(ctx, poolID)
}

// ApplyFundingAtomic increments the counters only if capacity allows.
func (s *InMemory) ApplyFundingAtomic(ctx context.Context, poolID id.PoolID, amount int64, slots int, now time.Time) (*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[poolID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if amount <= 0 || !p.CanApplyFunding(slots) {
		return nil, sentinel.ErrCapacityExceeded
	}
	before := p.Clone()
	p.ApplyFunding(amount, slots, now)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pools[poolID] = before
	})
	return p.Clone(), nil
}

// Cancel moves a pending or active pool to cancelled.
func (s *InMemory) Cancel(ctx context.Context, poolID id.PoolID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[poolID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !p.Status.CanTransitionTo(models.StatusCancelled) {
		return sentinel.ErrInvalidState
	}
	before := p.Clone()
	p.ApplyCancel(now)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pools[poolID] = before
	})
	return nil
}
