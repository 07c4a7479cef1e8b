package service

import (
	"context"
	"log"
	"time"

	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/constant"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/repository/contract"
	"ai-mediation-be/internal/repository/specification"
	"ai-mediation-be/internal/repository/unitofwork"
	"ai-mediation-be/pkg/events"
	"ai-mediation-be/pkg/gateway"
	pktNats "ai-mediation-be/pkg/nats"

	"github.com/google/uuid"
)

type IHandoffService interface {
	BridgeSummary(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.HandoffResponse, error)
}

type handoffService struct {
	uowFactory     unitofwork.RepositoryFactory
	mediator       *gateway.Mediator
	eventPublisher *pktNats.Publisher
}

func NewHandoffService(
	uowFactory unitofwork.RepositoryFactory,
	mediator *gateway.Mediator,
	eventPublisher *pktNats.Publisher,
) IHandoffService {
	return &handoffService{
		uowFactory:     uowFactory,
		mediator:       mediator,
		eventPublisher: eventPublisher,
	}
}

// BridgeSummary returns the neutral topic summary shown on the invite
// screen, generating and persisting it on first call. The column is
// write-once: repeat calls and concurrent racers all end up with the
// same persisted value, and only the winner ever hits the gateway.
func (s *handoffService) BridgeSummary(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.HandoffResponse, error) {
	if role != entity.RolePartnerA {
		return nil, apperror.Authentication("only the session owner can create the invite")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	if session.BridgeSummary != nil {
		return &dto.HandoffResponse{Summary: *session.BridgeSummary, Code: session.Code}, nil
	}

	rows, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: []entity.Role{entity.RolePartnerA}},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to read messages", err)
	}
	if len(rows) == 0 {
		return nil, apperror.Validation("no messages to summarize yet")
	}

	contents := make([]string, len(rows))
	for i, row := range rows {
		contents[i] = row.Content
	}

	summary, err := s.mediator.GenerateSummary(ctx, contents)
	if err != nil {
		// The invite flow must not block on the model: answer with the
		// neutral fallback and leave the column unset so a later call
		// can try again.
		log.Printf("[WARN] Bridge summary generation failed: %v", err)
		return &dto.HandoffResponse{Summary: constant.BridgeSummaryFallback, Code: session.Code}, nil
	}

	err = uow.SessionRepository().SetBridgeSummary(ctx, sessionID, summary)
	if err == contract.ErrConflict {
		session, err = uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
		if err != nil {
			return nil, apperror.Persistence("failed to reload session", err)
		}
		if session != nil && session.BridgeSummary != nil {
			return &dto.HandoffResponse{Summary: *session.BridgeSummary, Code: session.Code}, nil
		}
		return nil, apperror.Persistence("summary conflict without persisted value", nil)
	}
	if err != nil {
		return nil, apperror.Persistence("failed to store summary", err)
	}

	s.publishEvent(events.TypeBridgeSummaryCreated, map[string]interface{}{
		"session_id": sessionID.String(),
	})

	return &dto.HandoffResponse{Summary: summary, Code: session.Code}, nil
}

func (s *handoffService) publishEvent(eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
		}
	}()
}
