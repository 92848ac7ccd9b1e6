package models

import "context"

type Officer struct {
	ID         int     `gorm:"primary_key" json:"id"`
	Code       string  `gorm:"size:8;not null;index" json:"code"`
	LastName   string  `gorm:"size:100;not null" json:"last_name"`
	OtherNames string  `gorm:"size:100;not null" json:"other_names"`
	Phone      *string `gorm:"size:50" json:"phone"`
	LocationId *int    `gorm:"index" json:"location_id"`
	Validity
}

func (Officer) TableName() string {
	return "officers"
}

func (o Officer) GetId() int {
	return o.ID
}

func (o Officer) GetCode() string {
	return o.Code
}

func GetOfficerByCode(ctx context.Context, code string) (*Officer, error) {
	return FindValidWhere[Officer](ctx, "code = ?", code)
}
