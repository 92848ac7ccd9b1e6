package models

func (d Diagnosis) GetId() int {
	return d.ID
}

func (d Diagnosis) GetCode() string {
	return d.Code
}

func (i Item) GetId() int {
	return i.ID
}

func (i Item) GetCode() string {
	return i.Code
}

func (s MedicalService) GetId() int {
	return s.ID
}

func (s MedicalService) GetCode() string {
	return s.Code
}

func (l Location) GetId() int {
	return l.ID
}

func (l Location) GetCode() string {
	return l.Code
}

func (h HealthFacility) GetId() int {
	return h.ID
}

func (h HealthFacility) GetCode() string {
	return h.Code
}
