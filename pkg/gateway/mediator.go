package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-mediation-be/internal/constant"
	"ai-mediation-be/internal/entity"
	"ai-mediation-be/pkg/llm"
)

// Turn is one entry of the bounded context window handed to the model.
// Role is the generic user/model alternation, not a partner tag.
type Turn struct {
	Role    string // llm.RoleUser or llm.RoleModel
	Content string
}

// Mediator is the text-generation gateway: three stateless calls on top
// of an LLM provider. It never reads or writes the store.
type Mediator struct {
	provider llm.LLMProvider
}

func NewMediator(provider llm.LLMProvider) *Mediator {
	return &Mediator{provider: provider}
}

// GenerateReply produces the mediator's answer to one partner's new
// message given their recent window.
func (m *Mediator) GenerateReply(ctx context.Context, history []Turn, newMessage string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		role := turn.Role
		if role != llm.RoleUser {
			role = llm.RoleModel
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: newMessage})

	reply, err := m.provider.Chat(ctx, messages, llm.WithSystem(constant.MediatorSystemPrompt))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return constant.ReplyFallback, nil
	}
	return reply, nil
}

// GenerateSummary turns Partner A's human-authored messages into a short
// neutral topic description for the invite hand-off.
func (m *Mediator) GenerateSummary(ctx context.Context, contents []string) (string, error) {
	prompt := fmt.Sprintf(constant.BridgeSummaryPromptFormat, strings.Join(contents, "\n"))

	summary, err := m.provider.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return constant.BridgeSummaryFallback, nil
	}
	return summary, nil
}

// GenerateReport produces the structured joint report from both partners'
// human-authored threads. Returns nil (never panics) when the model
// output cannot be parsed.
func (m *Mediator) GenerateReport(ctx context.Context, messagesA, messagesB []string) (*entity.MediationReport, error) {
	prompt := fmt.Sprintf(
		constant.MediationReportPromptFormat,
		strings.Join(messagesA, "\n"),
		strings.Join(messagesB, "\n"),
	)

	raw, err := m.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var report entity.MediationReport
	if err := json.Unmarshal(StripCodeFence([]byte(raw)), &report); err != nil {
		return nil, fmt.Errorf("parse report: %w | raw: %s", err, raw)
	}
	if report.Analysis == "" || report.AdviceForA == "" || report.AdviceForB == "" {
		return nil, fmt.Errorf("incomplete report from model: %s", raw)
	}
	return &report, nil
}

// StripCodeFence removes markdown code-fence wrappers models habitually
// put around JSON output.
func StripCodeFence(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	raw = bytes.TrimPrefix(raw, []byte("```json"))
	raw = bytes.TrimPrefix(raw, []byte("```"))
	raw = bytes.TrimSuffix(raw, []byte("```"))
	return bytes.TrimSpace(raw)
}
