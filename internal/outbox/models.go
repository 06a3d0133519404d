// Package outbox implements the transactional outbox: state changes append
// entries in the same transaction that makes them, and a worker drains them
// to a publisher afterwards.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types published for contribution transitions.
const (
	EventContributionConfirmed = "contribution.confirmed"
	EventContributionFailed    = "contribution.failed"
)

// AggregateContribution is the aggregate type for contribution events.
const AggregateContribution = "contribution"

// Entry is one row of the outbox.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	// ClaimedUntil is set while a worker holds the entry for publishing.
	ClaimedUntil *time.Time
	Attempts     int
	LastError    string
}

// NewEntry marshals payload to JSON and builds an unpublished entry.
func NewEntry(aggregateType, aggregateID, eventType string, payload any, now time.Time) (*Entry, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       b,
		CreatedAt:     now,
	}, nil
}

// IsPublished reports whether the entry has been handed to the publisher.
func (e *Entry) IsPublished() bool {
	return e.PublishedAt != nil
}
