package models

import "github.com/shopspring/decimal"

type MedicalService struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Code            string          `gorm:"size:6;not null;index" json:"code"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Type            string          `gorm:"size:1;not null" json:"type"`
	Level           string          `gorm:"size:1;not null" json:"level"`
	Price           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	CareType        string          `gorm:"size:1;not null" json:"care_type"`
	PatientCategory int             `gorm:"not null" json:"patient_category"`
	Category        *string         `gorm:"size:1" json:"category"`
	Frequency       *int            `json:"frequency"`
	Validity
}

func (MedicalService) TableName() string {
	return "medical_services"
}
