package models

import "github.com/shopspring/decimal"

// Patient category bitmask, combined from the four yes/no flags carried by
// the upload format.
const (
	PatientCategoryMale   = 1
	PatientCategoryFemale = 2
	PatientCategoryAdult  = 4
	PatientCategoryMinor  = 8
)

type Item struct {
	ID              int              `gorm:"primary_key" json:"id"`
	Code            string           `gorm:"size:6;not null;index" json:"code"`
	Name            string           `gorm:"size:100;not null" json:"name"`
	Type            string           `gorm:"size:1;not null" json:"type"`
	Price           decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"price"`
	CareType        string           `gorm:"size:1;not null" json:"care_type"`
	PatientCategory int              `gorm:"not null" json:"patient_category"`
	Quantity        *decimal.Decimal `gorm:"type:decimal(18,2)" json:"quantity"`
	Frequency       *int             `json:"frequency"`
	Package         *string          `gorm:"size:255" json:"package"`
	Validity
}

func (Item) TableName() string {
	return "medical_items"
}
