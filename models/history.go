package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:20;not null" json:"action_type"`
	Before        string    `gorm:"type:json" json:"before"`
	Description   string    `gorm:"size:255" json:"description"`
	ReferenceId   int       `gorm:"not null;index" json:"reference_id"`
	ReferenceType string    `gorm:"size:50;not null;index" json:"reference_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (History) TableName() string {
	return "histories"
}

// SaveRegisterSnapshot persists the pre-change state of a register row.
// Every update and every archival goes through here before touching the row.
func SaveRegisterSnapshot(ctx context.Context, referenceType string, referenceId int, before interface{}) error {
	payload, err := utils.MarshalToJSON(before)
	if err != nil {
		return err
	}
	history := History{
		ActionType:    "UPDATE",
		Before:        payload,
		ReferenceId:   referenceId,
		ReferenceType: referenceType,
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&history).Error
}
