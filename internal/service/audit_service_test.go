package service

import (
	"context"
	"testing"

	"ai-mediation-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	modules  []string
	messages []string
	details  []map[string]interface{}
}

func (c *captureLogger) Debug(module, message string, details map[string]interface{}) {}
func (c *captureLogger) Info(module, message string, details map[string]interface{}) {
	c.modules = append(c.modules, module)
	c.messages = append(c.messages, message)
	c.details = append(c.details, details)
}
func (c *captureLogger) Warn(module, message string, details map[string]interface{})  {}
func (c *captureLogger) Error(module, message string, details map[string]interface{}) {}
func (c *captureLogger) Sync() error                                                  { return nil }

func TestAuditHandleEventRecordsLifecycle(t *testing.T) {
	log := &captureLogger{}
	svc := NewAuditService(nil, log)

	err := svc.handleEvent(context.Background(), events.New(events.TypeSessionCreated, map[string]interface{}{
		"session_id": "abc",
	}))
	require.NoError(t, err)

	// Subjects arrive with the stream prefix; the trail keeps the bare type.
	err = svc.handleEvent(context.Background(), events.BaseEvent{
		Type: "events." + events.TypeReportGenerated,
		Data: map[string]interface{}{"session_id": "abc"},
	})
	require.NoError(t, err)

	require.Len(t, log.messages, 2)
	assert.Equal(t, events.TypeSessionCreated, log.messages[0])
	assert.Equal(t, events.TypeReportGenerated, log.messages[1])
	assert.Equal(t, "abc", log.details[1]["session_id"])
}
