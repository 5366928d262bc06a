package event

import (
	"context"
	"encoding/json"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogHandler writes every domain event to the log with its JSON payload
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a handler that subscribes to all events
func NewLogHandler(log *zap.Logger) *LogHandler {
	return &LogHandler{logger: log.Named("events")}
}

func (h *LogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	logger.WithTraceContext(ctx, h.logger).Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// EventTypes is empty: the handler receives every event
func (h *LogHandler) EventTypes() []string {
	return nil
}
