package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) TestIncrement() {
	s.Run("creates on first credit", func() {
		userID := id.UserID(uuid.New())
		_, err := s.store.FindByID(s.ctx, userID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.store.IncrementTotalContributed(s.ctx, userID, 1_000, s.now))
		u, err := s.store.FindByID(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(int64(1_000), u.TotalContributed)
		s.Equal(1, u.ConfirmedContributions)
	})

	s.Run("accumulates under concurrency", func() {
		userID := id.UserID(uuid.New())
		var wg sync.WaitGroup
		for range 25 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.NoError(s.store.IncrementTotalContributed(s.ctx, userID, 200, s.now))
			}()
		}
		wg.Wait()
		u, err := s.store.FindByID(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(int64(5_000), u.TotalContributed)
		s.Equal(25, u.ConfirmedContributions)
	})
}

func (s *InMemoryStoreSuite) TestJournalRollback() {
	s.Run("removes a user created in the rolled back tx", func() {
		userID := id.UserID(uuid.New())
		j := &txcontext.Journal{}
		ctx := txcontext.WithJournal(s.ctx, j)
		s.Require().NoError(s.store.IncrementTotalContributed(ctx, userID, 700, s.now))
		j.Rollback()

		_, err := s.store.FindByID(s.ctx, userID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("restores previous totals", func() {
		userID := id.UserID(uuid.New())
		s.Require().NoError(s.store.IncrementTotalContributed(s.ctx, userID, 300, s.now))

		j := &txcontext.Journal{}
		ctx := txcontext.WithJournal(s.ctx, j)
		s.Require().NoError(s.store.IncrementTotalContributed(ctx, userID, 700, s.now.Add(time.Minute)))
		j.Rollback()

		u, err := s.store.FindByID(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(int64(300), u.TotalContributed)
		s.Equal(1, u.ConfirmedContributions)
		s.Equal(s.now, u.UpdatedAt)
	})
}
