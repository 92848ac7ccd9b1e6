package models

import (
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/imis_backend/config"
)

// MigrateTable runs AutoMigrate for every table the service owns.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&History{},
		&Diagnosis{},
		&Item{},
		&MedicalService{},
		&Location{},
		&UserDistrict{},
		&HealthFacility{},
		&ItemsPricelist{},
		&ServicesPricelist{},
		&Extract{},
		&Officer{},
		&Family{},
		&Insuree{},
		&Policy{},
		&Product{},
		&Premium{},
		&InsureePolicy{},
		&PolicyRenewal{},
		&Claim{},
		&Feedback{},
		&FeedbackPrompt{},
	)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"field": "migrations",
		}).Panic(err.Error())
	}
}
