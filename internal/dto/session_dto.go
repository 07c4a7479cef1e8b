package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required,len=4,numeric"`
}

type JoinSessionRequest struct {
	Code  string `json:"code" validate:"required"`
	Pin   string `json:"pin" validate:"required,len=4,numeric"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// SessionResponse is the public view of a session: credentials and the
// other partner's private artifacts never leave the service.
type SessionResponse struct {
	Id            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Status        string    `json:"status"`
	PartnerAName  string    `json:"partner_a_name"`
	PartnerBName  *string   `json:"partner_b_name,omitempty"`
	PartnerBReady bool      `json:"partner_b_ready"`
	HasReport     bool      `json:"has_report"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateSessionResponse struct {
	Session *SessionResponse `json:"session"`
	Token   string           `json:"token"`
}

type JoinSessionResponse struct {
	Session *SessionResponse `json:"session"`
	Role    string           `json:"role"`
	Token   string           `json:"token"`
}
