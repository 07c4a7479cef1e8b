package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/mapper"
	"ai-mediation-be/internal/model"
	"ai-mediation-be/internal/repository/contract"
	"ai-mediation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RegisterPartnerB is a compare-and-set keyed on partner_b_ready = false,
// so two devices joining with the same code cannot both register as B.
func (r *SessionRepositoryImpl) RegisterPartnerB(ctx context.Context, id uuid.UUID, name, email, pinHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND partner_b_ready = ?", id, false).
		Updates(map[string]interface{}{
			"partner_b_name":     name,
			"partner_b_email":    email,
			"partner_b_pin_hash": pinHash,
			"partner_b_ready":    true,
			"status":             string(entity.SessionStatusActive),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrConflict
	}
	return nil
}

// SetBridgeSummary is a compare-and-set keyed on bridge_summary IS NULL.
func (r *SessionRepositoryImpl) SetBridgeSummary(ctx context.Context, id uuid.UUID, summary string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND bridge_summary IS NULL", id).
		Update("bridge_summary", summary)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrConflict
	}
	return nil
}

// SetMediationReport is a compare-and-set keyed on mediation_report IS NULL.
// The session is marked resolved in the same statement so status and report
// can never disagree.
func (r *SessionRepositoryImpl) SetMediationReport(ctx context.Context, id uuid.UUID, report *entity.MediationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND mediation_report IS NULL", id).
		Updates(map[string]interface{}{
			"mediation_report": datatypes.JSON(data),
			"status":           string(entity.SessionStatusResolved),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrConflict
	}
	return nil
}
