package outbox

import (
	"context"
	"log/slog"
)

// Publisher delivers outbox entries downstream. A batch either publishes as a
// whole or returns an error, in which case the worker retries it later.
type Publisher interface {
	Publish(ctx context.Context, entries []*Entry) error
}

// LogPublisher writes entries to the structured log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, entries []*Entry) error {
	for _, e := range entries {
		p.logger.InfoContext(ctx, "outbox event",
			"event_id", e.ID,
			"event_type", e.EventType,
			"aggregate_type", e.AggregateType,
			"aggregate_id", e.AggregateID,
			"payload", string(e.Payload),
		)
	}
	return nil
}
