package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/fdccore/backend/internal/domain/shared"
)

// AuditLogHandler records every domain event as a structured audit entry.
// Override, freeze, reopen and query transitions all carry the acting user,
// so subscribing this handler to the bus produces the full audit trail
// without the services knowing about it.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler writing to the given logger
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		logger: logger.Named("audit"),
	}
}

// Handle writes one audit entry per event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	actor := event.EventActor()
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.String("actor_id", actor.ID.String()),
	}
	if actor.Email != "" {
		fields = append(fields, zap.String("actor_email", actor.Email))
	}
	if actor.Role != "" {
		fields = append(fields, zap.String("actor_role", actor.Role))
	}
	if details := event.Details(); len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}

	h.logger.Info("domain event", fields...)
	return nil
}

// EventTypes returns an empty slice so the handler receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
