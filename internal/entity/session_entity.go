package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusWaiting  SessionStatus = "waiting"
	SessionStatusActive   SessionStatus = "active"
	SessionStatusResolved SessionStatus = "resolved"
)

// Session binds the two partners, their credentials and the write-once
// joint artifacts (bridge summary, mediation report).
type Session struct {
	Id   uuid.UUID
	Code string // short human-facing code, stored upper-case

	PartnerAName    string
	PartnerAEmail   string
	PartnerAPinHash string

	PartnerBName    *string
	PartnerBEmail   *string
	PartnerBPinHash *string
	PartnerBReady   bool

	Status          SessionStatus
	BridgeSummary   *string
	MediationReport *MediationReport

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// HasReport reports whether the joint report has been persisted.
func (s *Session) HasReport() bool {
	return s.MediationReport != nil
}

// PartnerName returns the display name registered for the given role.
func (s *Session) PartnerName(role Role) string {
	if role == RolePartnerB && s.PartnerBName != nil {
		return *s.PartnerBName
	}
	return s.PartnerAName
}
