package specification

import (
	"ai-mediation-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID scopes message queries to one session.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByRoles filters messages to a set of role tags. Combined with
// BySessionID this is the thread-isolation read path: a partner's
// thread is exactly their own tag plus their bot tag.
type ByRoles struct {
	Roles []entity.Role
}

func (s ByRoles) Apply(db *gorm.DB) *gorm.DB {
	roles := make([]string, len(s.Roles))
	for i, r := range s.Roles {
		roles[i] = string(r)
	}
	return db.Where("role IN ?", roles)
}
