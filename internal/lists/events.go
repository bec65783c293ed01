package lists

import (
	"context"
	"log/slog"
	"time"

	"github.com/iendorse/rankd/pkg/kafka"
	"github.com/iendorse/rankd/pkg/metrics"
)

// ChangeType identifies what happened to an endorsement list.
type ChangeType string

const (
	ChangeCreated    ChangeType = "created"
	ChangeUpdated    ChangeType = "updated"
	ChangeDeleted    ChangeType = "deleted"
	ChangeReordered  ChangeType = "reordered"
	ChangeEndorsed   ChangeType = "endorsed"
	ChangeUnendorsed ChangeType = "unendorsed"
)

// ChangeEvent is published by the list CRUD surface whenever a list
// mutates. Any mutation can reorder the leaderboard, so the ranking service
// reacts by invalidating its cache.
type ChangeEvent struct {
	Type      ChangeType `json:"type"`
	ListID    string     `json:"list_id"`
	UserID    string     `json:"user_id"`
	Timestamp time.Time  `json:"timestamp"`
}

// Invalidator is the slice of the ranking cache the event handler needs.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// HandleChangeEvent returns a Kafka MessageHandler that invalidates the
// ranking cache on every list mutation. Malformed events are logged and
// skipped; a failed invalidation is returned so the message is not
// committed and will be redelivered.
func HandleChangeEvent(inv Invalidator, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "list-events")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChangeEvent](value)
		if err != nil {
			logger.Error("failed to decode list event", "error", err)
			if m != nil {
				m.ListEventsTotal.WithLabelValues("malformed").Inc()
			}
			return nil
		}
		if err := inv.Invalidate(ctx); err != nil {
			logger.Error("cache invalidation failed",
				"list_id", event.ListID,
				"change", event.Type,
				"error", err,
			)
			if m != nil {
				m.ListEventsTotal.WithLabelValues("error").Inc()
			}
			return err
		}
		logger.Info("ranking cache invalidated",
			"list_id", event.ListID,
			"change", event.Type,
		)
		if m != nil {
			m.ListEventsTotal.WithLabelValues("ok").Inc()
		}
		return nil
	}
}
