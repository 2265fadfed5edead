package service

import (
	"context"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/events"
	pktNats "ai-chat-be/pkg/nats"
)

// AuditService writes every domain event to the isolated audit log. It
// is a durable NATS consumer, so events published while the process was
// down are still recorded on restart.
type AuditService struct {
	subscriber *pktNats.Subscriber
	auditLog   logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, auditLog logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: subscriber,
		auditLog:   auditLog,
	}
}

// Start begins listening to the event bus.
func (s *AuditService) Start() error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Subscribe("events.>", "audit-service-worker", s.handleEvent)
}

func (s *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.auditLog.Info("Audit", event.EventType(), details)
	return nil
}
