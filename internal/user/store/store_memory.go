package store

import (
	"context"
	"sync"
	"time"

	"poolpay/internal/user/models"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// InMemory is a map-backed user aggregate store.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]*models.User)}
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// IncrementTotalContributed credits the user, creating the aggregate on first use.
func (s *InMemory) IncrementTotalContributed(ctx context.Context, userID id.UserID, amount int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.users[userID]
	u := &models.User{ID: userID}
	if existed {
		*u = *prev
	}
	u.Credit(amount, now)
	s.users[userID] = u

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !existed {
			delete(s.users, userID)
			return
		}
		s.users[userID] = prev
	})
	return nil
}
