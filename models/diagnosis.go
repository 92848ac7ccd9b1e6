package models

type Diagnosis struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Code string `gorm:"size:6;not null;index" json:"code"`
	Name string `gorm:"size:255;not null" json:"name"`
	Validity
}

func (Diagnosis) TableName() string {
	return "diagnoses"
}
