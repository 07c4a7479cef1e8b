package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Session struct {
	Id   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code string    `gorm:"type:varchar(16);not null;uniqueIndex"`

	PartnerAName    string `gorm:"type:text;not null"`
	PartnerAEmail   string `gorm:"type:text;not null"`
	PartnerAPinHash string `gorm:"type:text;not null"`

	PartnerBName    *string `gorm:"type:text"`
	PartnerBEmail   *string `gorm:"type:text"`
	PartnerBPinHash *string `gorm:"type:text"`
	PartnerBReady   bool    `gorm:"not null;default:false"`

	Status          string         `gorm:"type:varchar(20);not null;default:'waiting'"`
	BridgeSummary   *string        `gorm:"type:text"`
	MediationReport datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
