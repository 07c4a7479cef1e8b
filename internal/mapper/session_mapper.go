package mapper

import (
	"encoding/json"
	"time"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var report *entity.MediationReport
	if len(s.MediationReport) > 0 {
		var r entity.MediationReport
		if err := json.Unmarshal(s.MediationReport, &r); err == nil {
			report = &r
		}
	}

	return &entity.Session{
		Id:              s.Id,
		Code:            s.Code,
		PartnerAName:    s.PartnerAName,
		PartnerAEmail:   s.PartnerAEmail,
		PartnerAPinHash: s.PartnerAPinHash,
		PartnerBName:    s.PartnerBName,
		PartnerBEmail:   s.PartnerBEmail,
		PartnerBPinHash: s.PartnerBPinHash,
		PartnerBReady:   s.PartnerBReady,
		Status:          entity.SessionStatus(s.Status),
		BridgeSummary:   s.BridgeSummary,
		MediationReport: report,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var report datatypes.JSON
	if s.MediationReport != nil {
		if data, err := json.Marshal(s.MediationReport); err == nil {
			report = data
		}
	}

	return &model.Session{
		Id:              s.Id,
		Code:            s.Code,
		PartnerAName:    s.PartnerAName,
		PartnerAEmail:   s.PartnerAEmail,
		PartnerAPinHash: s.PartnerAPinHash,
		PartnerBName:    s.PartnerBName,
		PartnerBEmail:   s.PartnerBEmail,
		PartnerBPinHash: s.PartnerBPinHash,
		PartnerBReady:   s.PartnerBReady,
		Status:          string(s.Status),
		BridgeSummary:   s.BridgeSummary,
		MediationReport: report,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}
