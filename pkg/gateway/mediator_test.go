package gateway

import (
	"context"
	"errors"
	"testing"

	"ai-mediation-be/internal/constant"
	"ai-mediation-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts the model's answers and records what it was asked.
type fakeProvider struct {
	chatReply    string
	generateText string
	err          error

	chatCalls     int
	generateCalls int
	lastHistory   []llm.Message
	lastOptions   llm.Options
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.chatCalls++
	f.lastHistory = history
	for _, opt := range options {
		opt(&f.lastOptions)
	}
	return f.chatReply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.generateCalls++
	return f.generateText, f.err
}

func TestGenerateReplyAppendsNewMessage(t *testing.T) {
	provider := &fakeProvider{chatReply: "I hear you."}
	m := NewMediator(provider)

	history := []Turn{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleModel, Content: "reply"},
	}
	reply, err := m.GenerateReply(context.Background(), history, "second")
	require.NoError(t, err)
	assert.Equal(t, "I hear you.", reply)

	require.Len(t, provider.lastHistory, 3)
	assert.Equal(t, "second", provider.lastHistory[2].Content)
	assert.Equal(t, llm.RoleUser, provider.lastHistory[2].Role)
	assert.Equal(t, constant.MediatorSystemPrompt, provider.lastOptions.System)
}

func TestGenerateReplyFallsBackOnEmptyOutput(t *testing.T) {
	provider := &fakeProvider{chatReply: "   \n"}
	m := NewMediator(provider)

	reply, err := m.GenerateReply(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, constant.ReplyFallback, reply)
}

func TestGenerateReplyPropagatesError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	m := NewMediator(provider)

	_, err := m.GenerateReply(context.Background(), nil, "hello")
	assert.Error(t, err)
}

func TestGenerateSummaryFallsBackOnEmptyOutput(t *testing.T) {
	provider := &fakeProvider{generateText: ""}
	m := NewMediator(provider)

	summary, err := m.GenerateSummary(context.Background(), []string{"we argue about money"})
	require.NoError(t, err)
	assert.Equal(t, constant.BridgeSummaryFallback, summary)
}

func TestGenerateSummaryTrims(t *testing.T) {
	provider := &fakeProvider{generateText: "  Communication about finances \n"}
	m := NewMediator(provider)

	summary, err := m.GenerateSummary(context.Background(), []string{"msg"})
	require.NoError(t, err)
	assert.Equal(t, "Communication about finances", summary)
}

func TestGenerateReportParsesFencedJSON(t *testing.T) {
	provider := &fakeProvider{generateText: "```json\n{\"analysis\":\"a\",\"advice_for_a\":\"b\",\"advice_for_b\":\"c\"}\n```"}
	m := NewMediator(provider)

	report, err := m.GenerateReport(context.Background(), []string{"m1"}, []string{"m2"})
	require.NoError(t, err)
	assert.Equal(t, "a", report.Analysis)
	assert.Equal(t, "b", report.AdviceForA)
	assert.Equal(t, "c", report.AdviceForB)
}

func TestGenerateReportRejectsIncompleteJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing analysis", `{"advice_for_a":"b","advice_for_b":"c"}`},
		{"missing advice", `{"analysis":"a"}`},
		{"not json", "Sorry, I cannot do that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{generateText: tt.raw}
			m := NewMediator(provider)

			report, err := m.GenerateReport(context.Background(), []string{"m"}, []string{"m"})
			assert.Error(t, err)
			assert.Nil(t, report)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  \n```json\n{}\n```  ", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(StripCodeFence([]byte(tt.input))))
		})
	}
}
