package service

import (
	"context"
	"strings"

	"ai-mediation-be/internal/pkg/logger"
	"ai-mediation-be/pkg/events"
	pktNats "ai-mediation-be/pkg/nats"
)

// AuditService consumes the session lifecycle events from the NATS bus
// (session created, partner joined, summary written, report generated)
// and records them as a structured audit trail. The durable consumer
// means a restart of this worker picks up where it left off.
type AuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(sub *pktNats.Subscriber, log logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *AuditService) Start() {
	err := s.subscriber.Subscribe("events.>", "mediation-audit-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditService", "Failed to start audit subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("AuditService", "Audit service started, listening to events.>", nil)
}

func (s *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject carries the stream prefix; the audit trail keeps
	// the bare event type.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	s.logger.Info("Audit", typeCode, event.Payload())
	return nil
}
