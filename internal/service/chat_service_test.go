package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-mediation-be/internal/apperror"
	"ai-mediation-be/internal/dto"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/pkg/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatService(t *testing.T) (IChatService, *fakeFactory, *fakeLLM) {
	t.Helper()

	factory := newFakeFactory()
	provider := &fakeLLM{chatReply: "I hear you."}
	svc := NewChatService(factory, gateway.NewMediator(provider), &fakePublisher{})
	return svc, factory, provider
}

func seedSession(t *testing.T, factory *fakeFactory, withSummary bool) uuid.UUID {
	t.Helper()

	bName := "Sam"
	bEmail := "sam@example.com"
	bHash := "irrelevant"
	session := &entity.Session{
		Id:              uuid.New(),
		Code:            "ABC123",
		PartnerAName:    "Alex",
		PartnerAEmail:   "alex@example.com",
		PartnerAPinHash: "irrelevant",
		PartnerBName:    &bName,
		PartnerBEmail:   &bEmail,
		PartnerBPinHash: &bHash,
		PartnerBReady:   true,
		Status:          entity.SessionStatusActive,
		CreatedAt:       time.Now(),
	}
	if withSummary {
		summary := "Communication about finances"
		session.BridgeSummary = &summary
	}
	require.NoError(t, factory.uow.sessions.Create(context.Background(), session))
	return session.Id
}

func TestEnsureWelcomeOpensThreadOnce(t *testing.T) {
	svc, factory, provider := newChatService(t)
	sessionID := seedSession(t, factory, false)

	first, err := svc.EnsureWelcome(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	require.NotNil(t, first.Message)
	assert.Equal(t, "bot_to_a", first.Message.Role)
	assert.Contains(t, first.Message.Content, "Alex")

	// Second call returns the same opener without writing a new row.
	second, err := svc.EnsureWelcome(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	assert.Equal(t, first.Message.Id, second.Message.Id)

	count, _ := factory.uow.messages.Count(context.Background())
	assert.Equal(t, int64(1), count)

	// Welcomes are synthesized locally, never via the model.
	assert.Equal(t, 0, provider.chatCalls)
	assert.Equal(t, 0, provider.generateCalls)
}

func TestEnsureWelcomeForPartnerBQuotesSummary(t *testing.T) {
	svc, factory, _ := newChatService(t)
	sessionID := seedSession(t, factory, true)

	res, err := svc.EnsureWelcome(context.Background(), sessionID, entity.RolePartnerB)
	require.NoError(t, err)
	assert.Equal(t, "bot_to_b", res.Message.Role)
	assert.Contains(t, res.Message.Content, "Sam")
	assert.Contains(t, res.Message.Content, "Communication about finances")
}

func TestSendPersistsAndReplies(t *testing.T) {
	svc, factory, _ := newChatService(t)
	sessionID := seedSession(t, factory, false)

	res, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{
		Content: "We keep arguing about money.",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Sent)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "partner_a", res.Sent.Role)
	assert.Equal(t, "bot_to_a", res.Reply.Role)
	assert.Equal(t, "I hear you.", res.Reply.Content)

	count, _ := factory.uow.messages.Count(context.Background())
	assert.Equal(t, int64(2), count)
}

func TestSendRejectsEmptyContentBeforePersisting(t *testing.T) {
	svc, factory, provider := newChatService(t)
	sessionID := seedSession(t, factory, false)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{Content: content})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	}

	count, _ := factory.uow.messages.Count(context.Background())
	assert.Equal(t, int64(0), count)
	assert.Equal(t, 0, provider.chatCalls)
}

func TestSendKeepsHumanMessageOnGatewayFailure(t *testing.T) {
	svc, factory, provider := newChatService(t)
	sessionID := seedSession(t, factory, false)
	provider.err = fmt.Errorf("upstream timeout")

	res, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{
		Content: "Are you there?",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindGateway))
	require.NotNil(t, res)
	require.NotNil(t, res.Sent)
	assert.Nil(t, res.Reply)

	rows, _ := factory.uow.messages.FindAll(context.Background())
	require.Len(t, rows, 1)
	assert.Equal(t, entity.RolePartnerA, rows[0].Role)
}

func TestSendBoundsHistoryWindow(t *testing.T) {
	svc, factory, provider := newChatService(t)
	sessionID := seedSession(t, factory, false)

	for i := 0; i < 8; i++ {
		_, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	// history window plus the new message itself
	assert.LessOrEqual(t, len(provider.lastHistory), historyWindow+1)
}

func TestThreadIsolation(t *testing.T) {
	svc, factory, _ := newChatService(t)
	sessionID := seedSession(t, factory, false)

	_, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{Content: "a secret"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), sessionID, entity.RolePartnerB, &dto.SendMessageRequest{Content: "b secret"})
	require.NoError(t, err)

	threadA, err := svc.Thread(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	threadB, err := svc.Thread(context.Background(), sessionID, entity.RolePartnerB)
	require.NoError(t, err)

	for _, msg := range threadA {
		assert.NotEqual(t, "b secret", msg.Content)
		assert.Contains(t, []string{"partner_a", "bot_to_a"}, msg.Role)
	}
	for _, msg := range threadB {
		assert.NotEqual(t, "a secret", msg.Content)
		assert.Contains(t, []string{"partner_b", "bot_to_b"}, msg.Role)
	}
}

func TestThreadIsChronological(t *testing.T) {
	svc, factory, _ := newChatService(t)
	sessionID := seedSession(t, factory, false)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	thread, err := svc.Thread(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	require.Len(t, thread, 6)
	for i := 1; i < len(thread); i++ {
		assert.False(t, thread[i].CreatedAt.Before(thread[i-1].CreatedAt))
	}
}

func TestEligibilityCountsOnlyOwnMessages(t *testing.T) {
	svc, factory, _ := newChatService(t)
	sessionID := seedSession(t, factory, false)

	res, err := svc.Eligibility(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	assert.False(t, res.CanProceed)
	assert.Equal(t, int64(0), res.MessageCount)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), sessionID, entity.RolePartnerA, &dto.SendMessageRequest{
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	res, err = svc.Eligibility(context.Background(), sessionID, entity.RolePartnerA)
	require.NoError(t, err)
	assert.True(t, res.CanProceed)
	assert.Equal(t, int64(3), res.MessageCount)

	// Bot replies were persisted too, but only human rows count.
	other, err := svc.Eligibility(context.Background(), sessionID, entity.RolePartnerB)
	require.NoError(t, err)
	assert.False(t, other.CanProceed)
	assert.Equal(t, int64(0), other.MessageCount)
}

func TestChatUnknownSession(t *testing.T) {
	svc, _, _ := newChatService(t)

	_, err := svc.Send(context.Background(), uuid.New(), entity.RolePartnerA, &dto.SendMessageRequest{Content: "hi"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.Thread(context.Background(), uuid.New(), entity.RolePartnerA)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
