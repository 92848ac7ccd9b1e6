package models

// Location types, ordered parent to child: R region, D district,
// W municipality (ward), V village.
const (
	LocationTypeRegion       = "R"
	LocationTypeDistrict     = "D"
	LocationTypeMunicipality = "W"
	LocationTypeVillage      = "V"
)

type Location struct {
	ID               int       `gorm:"primary_key" json:"id"`
	Code             string    `gorm:"size:8;not null;index" json:"code"`
	Name             string    `gorm:"size:50;not null" json:"name"`
	Type             string    `gorm:"size:1;not null" json:"type"`
	ParentId         *int      `gorm:"index" json:"parent_id"`
	Parent           *Location `gorm:"foreignKey:ParentId" json:"parent,omitempty"`
	MalePopulation   *int      `json:"male_population"`
	FemalePopulation *int      `json:"female_population"`
	OtherPopulation  *int      `json:"other_population"`
	Families         *int      `json:"families"`
	Validity
}

func (Location) TableName() string {
	return "locations"
}

// UserDistrict scopes a user to the districts they manage. Uploading a new
// district grants it to the uploader.
type UserDistrict struct {
	ID          int `gorm:"primary_key" json:"id"`
	UserId      int `gorm:"not null;index:idx_user_district,unique" json:"user_id"`
	LocationId  int `gorm:"not null;index:idx_user_district,unique" json:"location_id"`
	AuditUserId int `gorm:"not null" json:"audit_user_id"`
}

func (UserDistrict) TableName() string {
	return "user_districts"
}
