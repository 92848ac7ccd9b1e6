package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/config"
)

const (
	ExtractDirectionExport = 0
	ExtractDirectionImport = 1

	ExtractTypeMasterData       = 1
	ExtractTypeOfficerFeedbacks = 2
	ExtractTypeOfficerRenewals  = 3
	ExtractTypeEnrollments      = 4
	ExtractTypeRenewals         = 5
	ExtractTypeFeedbacks        = 6
)

// Extract records every bundle produced for or received from the mobile
// clients, with the local (or GCS) object name it was stored under.
type Extract struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Direction   int       `gorm:"not null" json:"direction"`
	Type        int       `gorm:"not null" json:"type"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	StoredAs    string    `gorm:"size:512;not null" json:"stored_as"`
	LocationId  *int      `gorm:"index" json:"location_id"`
	OfficerId   *int      `gorm:"index" json:"officer_id"`
	AuditUserId int       `gorm:"not null" json:"audit_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Extract) TableName() string {
	return "extracts"
}

func CreateExtract(ctx context.Context, extract *Extract) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(extract).Error
}
