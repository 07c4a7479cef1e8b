package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/constant"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/repository/specification"
	"ai-mediation-be/internal/repository/unitofwork"
	"ai-mediation-be/pkg/gateway"
	"ai-mediation-be/pkg/llm"

	"github.com/google/uuid"
)

// historyWindow bounds the context handed to the model per reply.
const historyWindow = 5

// eligibilityThreshold is how many of their own messages a partner must
// have sent before the hand-off step unlocks.
const eligibilityThreshold = 3

type IChatService interface {
	EnsureWelcome(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.WelcomeResponse, error)
	Send(ctx context.Context, sessionID uuid.UUID, role entity.Role, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Thread(ctx context.Context, sessionID uuid.UUID, role entity.Role) ([]*dto.MessageResponse, error)
	Eligibility(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.EligibilityResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	mediator         *gateway.Mediator
	publisherService IPublisherService
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	mediator *gateway.Mediator,
	publisherService IPublisherService,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		mediator:         mediator,
		publisherService: publisherService,
	}
}

// EnsureWelcome opens the caller's thread with a locally synthesized
// greeting. Idempotent: when the thread already has messages, the
// existing opener is returned and nothing is written.
func (s *chatService) EnsureWelcome(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.WelcomeResponse, error) {
	if !role.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.loadSession(ctx, uow, sessionID)
	if err != nil {
		return nil, err
	}

	existing, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: role.ThreadRoles()},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to read thread", err)
	}
	if len(existing) > 0 {
		return &dto.WelcomeResponse{Message: toMessageResponse(existing[0])}, nil
	}

	welcome := &entity.Message{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      role.BotRole(),
		Content:   s.welcomeText(session, role),
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, welcome); err != nil {
		return nil, apperror.Persistence("failed to write welcome", err)
	}
	s.publishToFeed(ctx, welcome)

	return &dto.WelcomeResponse{Message: toMessageResponse(welcome)}, nil
}

// Send appends the caller's message and asks the mediator for a reply.
// The human message is durable before the gateway is called: a gateway
// failure returns the sent row alongside the error so nothing is lost.
func (s *chatService) Send(ctx context.Context, sessionID uuid.UUID, role entity.Role, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if !role.Valid() {
		return nil, apperror.Validation("unknown role")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation("message content must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.loadSession(ctx, uow, sessionID); err != nil {
		return nil, err
	}

	history, err := s.recentTurns(ctx, uow, sessionID, role)
	if err != nil {
		return nil, err
	}

	sent := &entity.Message{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, sent); err != nil {
		return nil, apperror.Persistence("failed to write message", err)
	}
	s.publishToFeed(ctx, sent)

	resp := &dto.SendMessageResponse{Sent: toMessageResponse(sent)}

	replyText, err := s.mediator.GenerateReply(ctx, history, content)
	if err != nil {
		return resp, apperror.Gateway("mediator unavailable", err)
	}

	reply := &entity.Message{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      role.BotRole(),
		Content:   replyText,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, reply); err != nil {
		return resp, apperror.Persistence("failed to write reply", err)
	}
	s.publishToFeed(ctx, reply)

	resp.Reply = toMessageResponse(reply)
	return resp, nil
}

// Thread returns the caller's full thread in chronological order. The
// role filter is what isolates the two partners' conversations.
func (s *chatService) Thread(ctx context.Context, sessionID uuid.UUID, role entity.Role) ([]*dto.MessageResponse, error) {
	if !role.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.loadSession(ctx, uow, sessionID); err != nil {
		return nil, err
	}

	rows, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: role.ThreadRoles()},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to read thread", err)
	}

	out := make([]*dto.MessageResponse, len(rows))
	for i, row := range rows {
		out[i] = toMessageResponse(row)
	}
	return out, nil
}

// Eligibility reports whether the caller has said enough for the
// hand-off step to unlock. Only their own messages count.
func (s *chatService) Eligibility(ctx context.Context, sessionID uuid.UUID, role entity.Role) (*dto.EligibilityResponse, error) {
	if !role.Valid() {
		return nil, apperror.Validation("unknown role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.loadSession(ctx, uow, sessionID); err != nil {
		return nil, err
	}

	count, err := uow.MessageRepository().Count(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: []entity.Role{role}},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to count messages", err)
	}

	return &dto.EligibilityResponse{
		CanProceed:   count >= eligibilityThreshold,
		MessageCount: count,
	}, nil
}

func (s *chatService) loadSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	return session, nil
}

// recentTurns fetches the last few thread messages as model turns,
// oldest first.
func (s *chatService) recentTurns(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID, role entity.Role) ([]gateway.Turn, error) {
	rows, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.ByRoles{Roles: role.ThreadRoles()},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to read history", err)
	}

	turns := make([]gateway.Turn, len(rows))
	for i, row := range rows {
		turnRole := llm.RoleModel
		if row.Role.IsHuman() {
			turnRole = llm.RoleUser
		}
		// rows arrive newest first
		turns[len(rows)-1-i] = gateway.Turn{Role: turnRole, Content: row.Content}
	}
	return turns, nil
}

func (s *chatService) welcomeText(session *entity.Session, role entity.Role) string {
	name := session.PartnerName(role)
	if role == entity.RolePartnerB && session.BridgeSummary != nil {
		return fmt.Sprintf(constant.WelcomeWithSummaryFormat, name, *session.BridgeSummary)
	}
	return fmt.Sprintf(constant.WelcomeFormat, name)
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        m.Id,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func (s *chatService) publishToFeed(ctx context.Context, msg *entity.Message) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		log.Printf("[WARN] Failed to publish message to feed: %v", err)
	}
}
