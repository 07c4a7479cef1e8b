package service

import (
	"context"
	"log"
	"time"

	"ai-mediation-be/internal/apperror"
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

// reportThreshold is the minimum number of human messages each partner
// must have sent before a joint report can be generated.
const reportThreshold = 2

type IReportService interface {
	Report(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.ReportResponse, error)
}

type reportService struct {
	uowFactory     unitofwork.RepositoryFactory
	mediator       *gateway.Mediator
	eventPublisher *pktNats.Publisher
}

func NewReportService(
	uowFactory unitofwork.RepositoryFactory,
	mediator *gateway.Mediator,
	eventPublisher *pktNats.Publisher,
) IReportService {
	return &reportService{
		uowFactory:     uowFactory,
		mediator:       mediator,
		eventPublisher: eventPublisher,
	}
}

// Report returns the caller's view of the joint report, generating and
// persisting it on first eligible call. The report column is write-once;
// both partners read the same persisted document, each seeing their own
// advice first.
func (s *reportService) Report(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.ReportResponse, error) {
	if !role.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	if session.HasReport() {
		return roleView(session.MediationReport, role, dto.ReportStatusReady), nil
	}

	messagesA, err := s.humanMessages(ctx, uow, sessionID, entity.RolePartnerA)
	if err != nil {
		return nil, err
	}
	messagesB, err := s.humanMessages(ctx, uow, sessionID, entity.RolePartnerB)
	if err != nil {
		return nil, err
	}
	if len(messagesA) < reportThreshold || len(messagesB) < reportThreshold {
		return &dto.ReportResponse{Status: dto.ReportStatusWaiting}, nil
	}

	report, err := s.mediator.GenerateReport(ctx, messagesA, messagesB)
	if err != nil {
		return &dto.ReportResponse{Status: dto.ReportStatusFailed},
			apperror.Gateway("report generation failed", err)
	}

	err = uow.SessionRepository().SetMediationReport(ctx, sessionID, report)
	if err == contract.ErrConflict {
		session, err = uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
		if err != nil {
			return nil, apperror.Persistence("failed to reload session", err)
		}
		if session != nil && session.HasReport() {
			return roleView(session.MediationReport, role, dto.ReportStatusReady), nil
		}
		return nil, apperror.Persistence("report conflict without persisted value", nil)
	}
	if err != nil {
		return nil, apperror.Persistence("failed to store report", err)
	}

	s.publishEvent(events.TypeReportGenerated, map[string]interface{}{
		"session_id": sessionID.String(),
	})

	return roleView(report, role, dto.ReportStatusGenerated), nil
}

func (s *reportService) humanMessages(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID, role entity.Role) ([]string, error) {
	rows, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: []entity.Role{role}},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to read messages", err)
	}
	contents := make([]string, len(rows))
	for i, row := range rows {
		contents[i] = row.Content
	}
	return contents, nil
}

func roleView(report *entity.MediationReport, role entity.Role, status string) *dto.ReportResponse {
	return &dto.ReportResponse{
		Status:        status,
		Analysis:      report.Analysis,
		MyAdvice:      report.AdviceFor(role),
		PartnerAdvice: report.AdviceForOther(role),
	}
}

func (s *reportService) publishEvent(eventType string, data map[string]interface{}) {
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
