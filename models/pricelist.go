package models

import (
	"context"

	"bitbucket.org/mmdatafocus/imis_backend/config"
)

// Pricelists are looked up by name during health facility uploads. They are
// maintained elsewhere; this module only resolves them.

type ItemsPricelist struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Validity
}

func (ItemsPricelist) TableName() string {
	return "items_pricelists"
}

type ServicesPricelist struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Validity
}

func (ServicesPricelist) TableName() string {
	return "services_pricelists"
}

func (p ItemsPricelist) GetId() int {
	return p.ID
}

func (p ItemsPricelist) GetName() string {
	return p.Name
}

func (p ServicesPricelist) GetId() int {
	return p.ID
}

func (p ServicesPricelist) GetName() string {
	return p.Name
}

type Pricelist interface {
	GetId() int
	GetName() string
}

// PricelistNamesById maps ids of the currently-valid pricelists to their
// names, for the health facility download.
func PricelistNamesById[T Pricelist](ctx context.Context) (map[int]string, error) {
	db := config.GetDB()
	var rows []T
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(rows))
	for _, row := range rows {
		out[row.GetId()] = row.GetName()
	}
	return out, nil
}
