package service

import (
	"context"
	"testing"

	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) (ISessionService, *fakeFactory, *fakeMailer) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	factory := newFakeFactory()
	mail := &fakeMailer{}
	svc := NewSessionService(factory, memory.NewCodeCache(), mail, nil, noopLogger{}, 6)
	return svc, factory, mail
}

func createSession(t *testing.T, svc ISessionService, name, email, pin string) *dto.CreateSessionResponse {
	t.Helper()
	res, err := svc.Create(context.Background(), &dto.CreateSessionRequest{
		Name:  name,
		Email: email,
		Pin:   pin,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	require.NotEmpty(t, res.Token)
	return res
}

func TestCreateSession(t *testing.T) {
	svc, factory, _ := newSessionService(t)

	res := createSession(t, svc, "Alex", "alex@example.com", "1111")

	assert.Len(t, res.Session.Code, 6)
	assert.Equal(t, "waiting", res.Session.Status)
	assert.Equal(t, "Alex", res.Session.PartnerAName)
	assert.False(t, res.Session.PartnerBReady)
	assert.False(t, res.Session.HasReport)

	stored := factory.uow.sessions.sessions[res.Session.Id]
	require.NotNil(t, stored)
	assert.NotEqual(t, "1111", stored.PartnerAPinHash, "PIN must never be stored in the clear")
}

func TestJoinResolvesRoleByPin(t *testing.T) {
	svc, _, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")
	code := created.Session.Code

	// Owner logs back in with their own PIN.
	res, err := svc.Join(context.Background(), &dto.JoinSessionRequest{Code: code, Pin: "1111"})
	require.NoError(t, err)
	assert.Equal(t, "partner_a", res.Role)

	// A fresh PIN with name and email claims the B seat.
	res, err = svc.Join(context.Background(), &dto.JoinSessionRequest{
		Code:  code,
		Pin:   "9999",
		Name:  "Sam",
		Email: "sam@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "partner_b", res.Role)
	assert.Equal(t, "active", res.Session.Status)
	assert.True(t, res.Session.PartnerBReady)
	require.NotNil(t, res.Session.PartnerBName)
	assert.Equal(t, "Sam", *res.Session.PartnerBName)

	// Both PINs keep resolving to their seat on later logins.
	res, err = svc.Join(context.Background(), &dto.JoinSessionRequest{Code: code, Pin: "1111"})
	require.NoError(t, err)
	assert.Equal(t, "partner_a", res.Role)

	res, err = svc.Join(context.Background(), &dto.JoinSessionRequest{Code: code, Pin: "9999"})
	require.NoError(t, err)
	assert.Equal(t, "partner_b", res.Role)
}

func TestJoinRejectsWrongPin(t *testing.T) {
	svc, _, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")
	code := created.Session.Code

	// B registered, so an unknown PIN matches neither seat.
	_, err := svc.Join(context.Background(), &dto.JoinSessionRequest{
		Code: code, Pin: "9999", Name: "Sam", Email: "sam@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), &dto.JoinSessionRequest{Code: code, Pin: "0000"})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestJoinUnknownCode(t *testing.T) {
	svc, _, _ := newSessionService(t)

	_, err := svc.Join(context.Background(), &dto.JoinSessionRequest{Code: "NOPE42", Pin: "1111"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestJoinNewPinWithoutIdentityIsRejected(t *testing.T) {
	svc, factory, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")

	// A fresh PIN without name/email must not claim the seat.
	_, err := svc.Join(context.Background(), &dto.JoinSessionRequest{
		Code: created.Session.Code,
		Pin:  "9999",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))

	stored := factory.uow.sessions.sessions[created.Session.Id]
	assert.False(t, stored.PartnerBReady)
	assert.Nil(t, stored.PartnerBName)
	assert.Nil(t, stored.PartnerBPinHash)
}

func TestJoinPartialIdentityIsValidationError(t *testing.T) {
	svc, factory, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")

	tests := []struct {
		name    string
		req     dto.JoinSessionRequest
		missing string
	}{
		{
			name:    "name without email",
			req:     dto.JoinSessionRequest{Code: created.Session.Code, Pin: "9999", Name: "Sam"},
			missing: "email",
		},
		{
			name:    "email without name",
			req:     dto.JoinSessionRequest{Code: created.Session.Code, Pin: "9999", Email: "sam@example.com"},
			missing: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Join(context.Background(), &tt.req)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}

	stored := factory.uow.sessions.sessions[created.Session.Id]
	assert.False(t, stored.PartnerBReady)
}

func TestJoinCodeIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")

	lower := ""
	for _, ch := range created.Session.Code {
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		lower += string(ch)
	}

	res, err := svc.Join(context.Background(), &dto.JoinSessionRequest{Code: lower, Pin: "1111"})
	require.NoError(t, err)
	assert.Equal(t, "partner_a", res.Role)
}

func TestPartnerBReadyImpliesFullRegistration(t *testing.T) {
	svc, factory, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")

	_, err := svc.Join(context.Background(), &dto.JoinSessionRequest{
		Code: created.Session.Code, Pin: "9999", Name: "Sam", Email: "sam@example.com",
	})
	require.NoError(t, err)

	stored := factory.uow.sessions.sessions[created.Session.Id]
	require.True(t, stored.PartnerBReady)
	assert.NotNil(t, stored.PartnerBName)
	assert.NotNil(t, stored.PartnerBEmail)
	assert.NotNil(t, stored.PartnerBPinHash)
	assert.Equal(t, entity.SessionStatusActive, stored.Status)
}

func TestGetSession(t *testing.T) {
	svc, _, _ := newSessionService(t)
	created := createSession(t, svc, "Alex", "alex@example.com", "1111")

	res, err := svc.Get(context.Background(), created.Session.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Session.Code, res.Code)
}
