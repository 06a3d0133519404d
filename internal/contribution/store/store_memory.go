package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"poolpay/internal/contribution/models"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// InMemory is a map-backed contribution store keyed by reference.
type InMemory struct {
	mu     sync.RWMutex
	byRef  map[string]*models.Contribution
	byPool map[id.PoolID][]string
	byUser map[id.UserID][]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		byRef:  make(map[string]*models.Contribution),
		byPool: make(map[id.PoolID][]string),
		byUser: make(map[id.UserID][]string),
	}
}

func (s *InMemory) Create(ctx context.Context, c *models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[c.Reference]; ok {
		return sentinel.ErrConflict
	}
	s.insertLocked(c.Clone())
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.removeLocked(c.Reference)
	})
	return nil
}

func (s *InMemory) insertLocked(c *models.Contribution) {
	s.byRef[c.Reference] = c
	s.byPool[c.PoolID] = append(s.byPool[c.PoolID], c.Reference)
	s.byUser[c.UserID] = append(s.byUser[c.UserID], c.Reference)
}

func (s *InMemory) removeLocked(ref string) {
	c, ok := s.byRef[ref]
	if !ok {
		return
	}
	delete(s.byRef, ref)
	s.byPool[c.PoolID] = without(s.byPool[c.PoolID], ref)
	s.byUser[c.UserID] = without(s.byUser[c.UserID], ref)
}

func without(refs []string, ref string) []string {
	out := refs[:0]
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}

func (s *InMemory) FindByReference(_ context.Context, ref string) (*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byRef[ref]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// DeleteIfPending removes a contribution that never left pending.
func (s *InMemory) DeleteIfPending(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byRef[ref]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Status != models.StatusPending {
		return sentinel.ErrInvalidState
	}
	s.removeLocked(ref)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.insertLocked(c)
	})
	return nil
}

// ConfirmIfPending transitions pending to confirmed and reports whether this
// call won. A second confirmed contribution for the same user and pool is
// refused with ErrConflict.
func (s *InMemory) ConfirmIfPending(ctx context.Context, ref, gatewayRef string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byRef[ref]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.Status != models.StatusPending {
		return false, nil
	}
	for _, other := range s.byPool[c.PoolID] {
		o := s.byRef[other]
		if other != ref && o.UserID == c.UserID && o.Status == models.StatusConfirmed {
			return false, sentinel.ErrConflict
		}
	}
	prev := c.Clone()
	c.ApplyConfirm(gatewayRef, now)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		*c = *prev
	})
	return true, nil
}

// FailIfPending transitions pending to failed and reports whether this call won.
func (s *InMemory) FailIfPending(ctx context.Context, ref string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byRef[ref]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.Status != models.StatusPending {
		return false, nil
	}
	prev := c.Clone()
	c.ApplyFail(now)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		*c = *prev
	})
	return true, nil
}

// HeldSlots sums slots of pending contributions created at or after since.
func (s *InMemory) HeldSlots(_ context.Context, poolID id.PoolID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := 0
	for _, ref := range s.byPool[poolID] {
		if c := s.byRef[ref]; c.IsHeld(since) {
			held += c.Slots
		}
	}
	return held, nil
}

func (s *InMemory) HasConfirmed(_ context.Context, poolID id.PoolID, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range s.byUser[userID] {
		if c := s.byRef[ref]; c.PoolID == poolID && c.Status == models.StatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) collectLocked(refs []string) []*models.Contribution {
	out := make([]*models.Contribution, 0, len(refs))
	for _, ref := range refs {
		out = append(out, s.byRef[ref].Clone())
	}
	return out
}

// ListByUser returns the user's contributions, newest first.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collectLocked(s.byUser[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByPool returns the pool's contributions, oldest first.
func (s *InMemory) ListByPool(_ context.Context, poolID id.PoolID) ([]*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collectLocked(s.byPool[poolID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateDeliveryStatus sets the label on a confirmed contribution.
func (s *InMemory) UpdateDeliveryStatus(ctx context.Context, ref string, status models.DeliveryStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byRef[ref]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Status != models.StatusConfirmed {
		return sentinel.ErrInvalidState
	}
	prevStatus, prevUpdated := c.DeliveryStatus, c.UpdatedAt
	c.DeliveryStatus = status
	c.UpdatedAt = now
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.DeliveryStatus = prevStatus
		c.UpdatedAt = prevUpdated
	})
	return nil
}
