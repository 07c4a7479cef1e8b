package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageResponse: Reply is nil when the gateway was unavailable;
// the sent message is durable either way.
type SendMessageResponse struct {
	Sent  *MessageResponse `json:"sent"`
	Reply *MessageResponse `json:"reply,omitempty"`
}

type WelcomeResponse struct {
	Message *MessageResponse `json:"message,omitempty"`
}

type EligibilityResponse struct {
	CanProceed   bool  `json:"can_proceed"`
	MessageCount int64 `json:"message_count"`
}
