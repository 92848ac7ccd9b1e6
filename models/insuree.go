package models

import "time"

type Family struct {
	ID            int  `gorm:"primary_key" json:"id"`
	HeadInsureeId *int `gorm:"index" json:"head_insuree_id"`
	LocationId    *int `gorm:"index" json:"location_id"`
	Poverty       bool `gorm:"not null;default:false" json:"poverty"`
	Validity
}

func (Family) TableName() string {
	return "families"
}

type Insuree struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Chfid      string    `gorm:"column:chf_id;size:12;not null;index" json:"chf_id"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	OtherNames string    `gorm:"size:100;not null" json:"other_names"`
	Dob        time.Time `gorm:"not null" json:"dob"`
	Gender     *string   `gorm:"size:1" json:"gender"`
	Phone      *string   `gorm:"size:50" json:"phone"`
	FamilyId   *int      `gorm:"index" json:"family_id"`
	Family     *Family   `gorm:"foreignKey:FamilyId" json:"family,omitempty"`
	Head       bool      `gorm:"not null;default:false" json:"head"`
	CardIssued bool      `gorm:"not null;default:false" json:"card_issued"`
	Validity
}

func (Insuree) TableName() string {
	return "insurees"
}
