package registers

import (
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/models"
)

func TestCategoryFlag(t *testing.T) {
	category := models.PatientCategoryMale | models.PatientCategoryMinor
	if categoryFlag(category, models.PatientCategoryMale) != 1 {
		t.Fatal("male flag must be set")
	}
	if categoryFlag(category, models.PatientCategoryFemale) != 0 {
		t.Fatal("female flag must be clear")
	}
	if categoryFlag(category, models.PatientCategoryMinor) != 1 {
		t.Fatal("minor flag must be set")
	}
}

func TestCategoryFlagRoundTrip(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		rebuilt := patientCategoryMask(
			categoryFlag(mask, models.PatientCategoryMale),
			categoryFlag(mask, models.PatientCategoryFemale),
			categoryFlag(mask, models.PatientCategoryAdult),
			categoryFlag(mask, models.PatientCategoryMinor),
		)
		if rebuilt != mask {
			t.Fatalf("mask %d rebuilt as %d", mask, rebuilt)
		}
	}
}

func TestIntOrZero(t *testing.T) {
	if intOrZero(nil) != 0 {
		t.Fatal("nil must render 0")
	}
	value := 7
	if intOrZero(&value) != 7 {
		t.Fatal("set value must render itself")
	}
}
