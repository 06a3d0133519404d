package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"poolpay/internal/outbox"
	txcontext "poolpay/pkg/platform/tx"
)

// InMemory keeps outbox entries in insertion order.
type InMemory struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*outbox.Entry
	order   []uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[uuid.UUID]*outbox.Entry)}
}

func (s *InMemory) Append(ctx context.Context, e *outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries[e.ID] = &cp
	s.order = append(s.order, e.ID)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.entries, e.ID)
		for i := len(s.order) - 1; i >= 0; i-- {
			if s.order[i] == e.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	})
	return nil
}

// Claim leases up to limit unpublished entries, oldest first, skipping any
// still held by another claim at now.
func (s *InMemory) Claim(_ context.Context, limit int, now time.Time, lease time.Duration) ([]*outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var candidates []*outbox.Entry
	for _, entryID := range s.order {
		e := s.entries[entryID]
		if e.IsPublished() || (e.ClaimedUntil != nil && e.ClaimedUntil.After(now)) {
			continue
		}
		candidates = append(candidates, e)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	until := now.Add(lease)
	out := make([]*outbox.Entry, 0, len(candidates))
	for _, e := range candidates {
		t := until
		e.ClaimedUntil = &t
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) MarkPublished(_ context.Context, ids []uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entryID := range ids {
		if e, ok := s.entries[entryID]; ok && e.PublishedAt == nil {
			t := now
			e.PublishedAt = &t
			e.ClaimedUntil = nil
			e.Attempts++
		}
	}
	return nil
}

func (s *InMemory) MarkFailed(_ context.Context, ids []uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entryID := range ids {
		if e, ok := s.entries[entryID]; ok {
			e.Attempts++
			e.LastError = reason
			e.ClaimedUntil = nil
		}
	}
	return nil
}

// ListByAggregate returns every entry for an aggregate, published or not.
func (s *InMemory) ListByAggregate(_ context.Context, aggregateType, aggregateID string) ([]*outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*outbox.Entry
	for _, entryID := range s.order {
		e := s.entries[entryID]
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
