package service

import (
	"context"
	"sort"
	"sync"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/repository/contract"
	"ai-mediation-be/internal/repository/specification"
	"ai-mediation-be/internal/repository/unitofwork"
	"ai-mediation-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory repositories interpreting the same specifications the GORM
// implementations do, so services can be tested without a database.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) match(session *entity.Session, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.ByCode:
			if session.Code != normalizeCode(s.Code) {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if r.match(session, specs) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, session := range r.sessions {
		if r.match(session, specs) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) RegisterPartnerB(ctx context.Context, id uuid.UUID, name, email, pinHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil
	}
	if session.PartnerBReady {
		return contract.ErrConflict
	}
	session.PartnerBName = &name
	session.PartnerBEmail = &email
	session.PartnerBPinHash = &pinHash
	session.PartnerBReady = true
	session.Status = entity.SessionStatusActive
	return nil
}

func (r *fakeSessionRepo) SetBridgeSummary(ctx context.Context, id uuid.UUID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil
	}
	if session.BridgeSummary != nil {
		return contract.ErrConflict
	}
	session.BridgeSummary = &summary
	return nil
}

func (r *fakeSessionRepo) SetMediationReport(ctx context.Context, id uuid.UUID, report *entity.MediationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil
	}
	if session.MediationReport != nil {
		return contract.ErrConflict
	}
	copied := *report
	session.MediationReport = &copied
	session.Status = entity.SessionStatusResolved
	return nil
}

func normalizeCode(code string) string {
	out := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		ch := code[i]
		if ch == ' ' {
			continue
		}
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out = append(out, ch)
	}
	return string(out)
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		sessionFilter *uuid.UUID
		roleFilter    []entity.Role
		desc          bool
		limit         int
	)
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySessionID:
			id := s.SessionID
			sessionFilter = &id
		case specification.ByRoles:
			roleFilter = s.Roles
		case specification.OrderBy:
			desc = s.Desc
		case specification.Pagination:
			limit = s.Limit
		}
	}

	var out []*entity.Message
	for _, msg := range r.messages {
		if sessionFilter != nil && msg.SessionId != *sessionFilter {
			continue
		}
		if roleFilter != nil && !containsRole(roleFilter, msg.Role) {
			continue
		}
		copied := *msg
		out = append(out, &copied)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.FindAll(ctx, specs...)
	return int64(len(rows)), err
}

func containsRole(roles []entity.Role, role entity.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository {
	return u.sessions
}

func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository {
	return u.messages
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUnitOfWork{
		sessions: newFakeSessionRepo(),
		messages: newFakeMessageRepo(),
	}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeLLM scripts the provider behind the mediator gateway.
type fakeLLM struct {
	mu           sync.Mutex
	chatReply    string
	generateText string
	err          error

	chatCalls     int
	generateCalls int
	lastHistory   []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls++
	f.lastHistory = history
	return f.chatReply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	return f.generateText, f.err
}

type fakeMailer struct {
	mu    sync.Mutex
	calls int
}

func (m *fakeMailer) SendSessionCode(toEmail, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}
