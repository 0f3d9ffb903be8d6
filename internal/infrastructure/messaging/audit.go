package messaging

import (
	"log/slog"

	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// RegisterAuditLogger subscribes a handler that writes every domain event to
// the structured log. This is the audit trail for enrollment lifecycle
// transitions; downstream modules (certificates, recommendations) attach
// their own subscribers next to it.
func RegisterAuditLogger(bus shared.EventSubscriber, logger *slog.Logger) error {
	return bus.SubscribeAll(func(event shared.Event) error {
		logger.Info("domain event",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload(),
		)
		return nil
	})
}
