package contract

import (
	"context"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrConflict is returned by the conditional writes when the guarded
// column was already set by a concurrent writer. Callers re-read and
// use the persisted value instead of their own.
type conflictError struct{}

func (conflictError) Error() string { return "conditional write conflict: value already set" }

var ErrConflict error = conflictError{}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// RegisterPartnerB fills the partner_b_* columns and flips
	// partner_b_ready, guarded on partner_b_ready = false. Returns
	// ErrConflict when B was registered concurrently.
	RegisterPartnerB(ctx context.Context, id uuid.UUID, name, email, pinHash string) error

	// SetBridgeSummary persists the summary guarded on the column
	// being NULL. Returns ErrConflict when it was set concurrently.
	SetBridgeSummary(ctx context.Context, id uuid.UUID, summary string) error

	// SetMediationReport persists the report guarded on the column
	// being NULL and marks the session resolved. Returns ErrConflict
	// when a report already exists.
	SetMediationReport(ctx context.Context, id uuid.UUID, report *entity.MediationReport) error
}
