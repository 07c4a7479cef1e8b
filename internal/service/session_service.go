package service

import (
	"context"
	"log"
	"strings"
	"time"

	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/pkg/logger"
	"ai-mediation-be/internal/pkg/mailer"
	"ai-mediation-be/internal/pkg/serverutils"
	"ai-mediation-be/internal/repository/contract"
	"ai-mediation-be/internal/repository/memory"
	"ai-mediation-be/internal/repository/specification"
	"ai-mediation-be/internal/repository/unitofwork"
	"ai-mediation-be/pkg/events"
	pktNats "ai-mediation-be/pkg/nats"
	"ai-mediation-be/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Join(ctx context.Context, req *dto.JoinSessionRequest) (*dto.JoinSessionResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	codeCache      *memory.CodeCache
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	codeLength     int
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	codeCache *memory.CodeCache,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
	codeLength int,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		codeCache:      codeCache,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
		codeLength:     codeLength,
	}
}

// Create opens a new session owned by Partner A. The PIN is stored as a
// bcrypt hash; the generated code is mailed to A so they can log back in.
func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash pin", err)
	}

	code, err := s.uniqueCode(ctx, uow)
	if err != nil {
		return nil, err
	}

	session := &entity.Session{
		Id:              uuid.New(),
		Code:            code,
		PartnerAName:    strings.TrimSpace(req.Name),
		PartnerAEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		PartnerAPinHash: string(hash),
		Status:          entity.SessionStatusWaiting,
		CreatedAt:       time.Now(),
	}

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Persistence("failed to create session", err)
	}

	s.codeCache.Save(session.Code, session.Id)

	token, err := serverutils.IssueSessionToken(session.Id, entity.RolePartnerA, session.PartnerAName)
	if err != nil {
		return nil, apperror.Persistence("failed to issue token", err)
	}

	// Fire-and-forget: neither the mail nor the event gates the response.
	go func(email, name, code string) {
		if err := s.emailService.SendSessionCode(email, name, code); err != nil {
			log.Printf("[WARN] Failed to send session code email: %v", err)
		}
	}(session.PartnerAEmail, session.PartnerAName, session.Code)

	s.publishEvent(events.TypeSessionCreated, map[string]interface{}{
		"session_id": session.Id.String(),
		"code":       session.Code,
	})
	s.logger.Info("SessionService", "Session created", map[string]interface{}{
		"session_id": session.Id,
	})

	return &dto.CreateSessionResponse{
		Session: toSessionResponse(session),
		Token:   token,
	}, nil
}

// Join resolves a code + PIN into a role. The PIN is checked against
// both partners unconditionally: A's hash first, then B's when B is
// registered. When B has not registered yet, a join carrying name and
// email claims the B seat.
func (s *sessionService) Join(ctx context.Context, req *dto.JoinSessionRequest) (*dto.JoinSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findByCode(ctx, uow, req.Code)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(session.PartnerAPinHash), []byte(req.Pin)) == nil {
		return s.joinAs(session, entity.RolePartnerA)
	}

	if session.PartnerBReady {
		if bcrypt.CompareHashAndPassword([]byte(*session.PartnerBPinHash), []byte(req.Pin)) == nil {
			return s.joinAs(session, entity.RolePartnerB)
		}
		return nil, apperror.Authentication("invalid PIN for this session")
	}

	// First-time join of the invited partner. A request with no identity
	// at all is a failed login; one carrying partial identity is a
	// registration attempt missing a required field.
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" && email == "" {
		return nil, apperror.Authentication("invalid PIN for this session")
	}
	if name == "" {
		return nil, apperror.Validation("name is required to join this session")
	}
	if email == "" {
		return nil, apperror.Validation("email is required to join this session")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash pin", err)
	}

	err = uow.SessionRepository().RegisterPartnerB(ctx, session.Id, name, email, string(hash))
	if err == contract.ErrConflict {
		// Someone claimed the seat first; re-read and fall back to a
		// plain PIN check against the winner's credentials.
		session, err = s.findByCode(ctx, uow, req.Code)
		if err != nil {
			return nil, err
		}
		if session.PartnerBPinHash != nil &&
			bcrypt.CompareHashAndPassword([]byte(*session.PartnerBPinHash), []byte(req.Pin)) == nil {
			return s.joinAs(session, entity.RolePartnerB)
		}
		return nil, apperror.Authentication("invalid PIN for this session")
	}
	if err != nil {
		return nil, apperror.Persistence("failed to register partner", err)
	}

	session, err = s.findByCode(ctx, uow, req.Code)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.TypePartnerJoined, map[string]interface{}{
		"session_id": session.Id.String(),
	})
	s.logger.Info("SessionService", "Partner B registered", map[string]interface{}{
		"session_id": session.Id,
	})

	return s.joinAs(session, entity.RolePartnerB)
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) joinAs(session *entity.Session, role entity.Role) (*dto.JoinSessionResponse, error) {
	token, err := serverutils.IssueSessionToken(session.Id, role, session.PartnerName(role))
	if err != nil {
		return nil, apperror.Persistence("failed to issue token", err)
	}
	return &dto.JoinSessionResponse{
		Session: toSessionResponse(session),
		Role:    string(role),
		Token:   token,
	}, nil
}

func (s *sessionService) findByCode(ctx context.Context, uow unitofwork.UnitOfWork, code string) (*entity.Session, error) {
	if id, found := s.codeCache.Get(code); found {
		session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, apperror.Persistence("failed to load session", err)
		}
		if session != nil {
			return session, nil
		}
	}

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByCode{Code: code})
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	s.codeCache.Save(session.Code, session.Id)
	return session, nil
}

// uniqueCode draws codes until one is free. Collisions are rare at the
// default length, so a small retry bound is enough.
func (s *sessionService) uniqueCode(ctx context.Context, uow unitofwork.UnitOfWork) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := utils.GenerateSessionCode(s.codeLength)
		if err != nil {
			return "", apperror.Persistence("failed to generate code", err)
		}
		count, err := uow.SessionRepository().Count(ctx, specification.ByCode{Code: code})
		if err != nil {
			return "", apperror.Persistence("failed to check code", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperror.Persistence("failed to allocate a unique session code", nil)
}

func (s *sessionService) publishEvent(eventType string, data map[string]interface{}) {
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

func toSessionResponse(session *entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:            session.Id,
		Code:          session.Code,
		Status:        string(session.Status),
		PartnerAName:  session.PartnerAName,
		PartnerBName:  session.PartnerBName,
		PartnerBReady: session.PartnerBReady,
		HasReport:     session.HasReport(),
		CreatedAt:     session.CreatedAt,
	}
}
