package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is one append-only chat row. Rows are never mutated or deleted;
// threads derive from (session, role-pair) ordered by CreatedAt.
type Message struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      Role
	Content   string
	CreatedAt time.Time
}
