package models

type HealthFacility struct {
	ID                  int                `gorm:"primary_key" json:"id"`
	Code                string             `gorm:"size:8;not null;index" json:"code"`
	Name                string             `gorm:"size:100;not null" json:"name"`
	LegalForm           string             `gorm:"size:1;not null" json:"legal_form"`
	Level               string             `gorm:"size:1;not null" json:"level"`
	SubLevel            *string            `gorm:"size:1" json:"sub_level"`
	Address             *string            `gorm:"size:100" json:"address"`
	LocationId          int                `gorm:"not null;index" json:"location_id"`
	Location            *Location          `gorm:"foreignKey:LocationId" json:"location,omitempty"`
	Phone               *string            `gorm:"size:50" json:"phone"`
	Fax                 *string            `gorm:"size:50" json:"fax"`
	Email               *string            `gorm:"size:50" json:"email"`
	CareType            string             `gorm:"size:1;not null" json:"care_type"`
	AccCode             *string            `gorm:"size:25" json:"acc_code"`
	ItemsPricelistId    *int               `json:"items_pricelist_id"`
	ItemsPricelist      *ItemsPricelist    `gorm:"foreignKey:ItemsPricelistId" json:"items_pricelist,omitempty"`
	ServicesPricelistId *int               `json:"services_pricelist_id"`
	ServicesPricelist   *ServicesPricelist `gorm:"foreignKey:ServicesPricelistId" json:"services_pricelist,omitempty"`
	Offline             bool               `gorm:"not null;default:false" json:"offline"`
	Validity
}

func (HealthFacility) TableName() string {
	return "health_facilities"
}
