package events

import (
	"context"

	"go.uber.org/zap"
)

// AuditLogger subscribes to all ticket events and records them in the
// structured log, giving dashboards and operators a trail of lifecycle
// changes without a dedicated audit store.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates the consumer.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// Register subscribes the audit handlers on the dispatcher.
func (a *AuditLogger) Register(dispatcher Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{
		EventTicketCreated,
		EventTicketStatusChanged,
		EventTicketAssigned,
		EventTicketMessageAdded,
		EventMissedFlagCorrected,
		EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditLogger) handle(ctx context.Context, event Event) error {
	a.logger.Info("ticket event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}
