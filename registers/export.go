package registers

import (
	"context"
	"encoding/xml"

	"bitbucket.org/mmdatafocus/imis_backend/models"
)

// The download documents mirror the upload formats so a downloaded register
// can be re-uploaded as is.

type diagnosisExportXml struct {
	Code string `xml:"DiagnosisCode"`
	Name string `xml:"DiagnosisName"`
}

type diagnosesExportFile struct {
	XMLName   xml.Name             `xml:"Diagnoses"`
	Diagnoses []diagnosisExportXml `xml:"Diagnosis"`
}

func ExportDiagnosesXML(ctx context.Context) ([]byte, error) {
	rows, err := models.FindAllValid[models.Diagnosis](ctx)
	if err != nil {
		return nil, err
	}
	doc := diagnosesExportFile{}
	for _, row := range rows {
		doc.Diagnoses = append(doc.Diagnoses, diagnosisExportXml{Code: row.Code, Name: row.Name})
	}
	return xml.MarshalIndent(doc, "", "  ")
}

type regionExportXml struct {
	RegionCode string `xml:"RegionCode"`
	RegionName string `xml:"RegionName"`
}

type districtExportXml struct {
	RegionCode   string `xml:"RegionCode"`
	DistrictCode string `xml:"DistrictCode"`
	DistrictName string `xml:"DistrictName"`
}

type municipalityExportXml struct {
	DistrictCode     string `xml:"DistrictCode"`
	MunicipalityCode string `xml:"MunicipalityCode"`
	MunicipalityName string `xml:"MunicipalityName"`
}

type villageExportXml struct {
	MunicipalityCode string `xml:"MunicipalityCode"`
	VillageCode      string `xml:"VillageCode"`
	VillageName      string `xml:"VillageName"`
	MalePopulation   int    `xml:"MalePopulation"`
	FemalePopulation int    `xml:"FemalePopulation"`
	OtherPopulation  int    `xml:"OtherPopulation"`
	Families         int    `xml:"Families"`
}

type locationsExportFile struct {
	XMLName        xml.Name                `xml:"Locations"`
	Regions        []regionExportXml       `xml:"Regions>Region"`
	Districts      []districtExportXml     `xml:"Districts>District"`
	Municipalities []municipalityExportXml `xml:"Municipalities>Municipality"`
	Villages       []villageExportXml      `xml:"Villages>Village"`
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func ExportLocationsXML(ctx context.Context) ([]byte, error) {
	rows, err := models.FindAllValid[models.Location](ctx)
	if err != nil {
		return nil, err
	}
	codesById := make(map[int]string, len(rows))
	for _, row := range rows {
		codesById[row.ID] = row.Code
	}
	parentCode := func(row models.Location) string {
		if row.ParentId == nil {
			return ""
		}
		return codesById[*row.ParentId]
	}

	doc := locationsExportFile{}
	for _, row := range rows {
		switch row.Type {
		case models.LocationTypeRegion:
			doc.Regions = append(doc.Regions, regionExportXml{RegionCode: row.Code, RegionName: row.Name})
		case models.LocationTypeDistrict:
			doc.Districts = append(doc.Districts, districtExportXml{
				RegionCode:   parentCode(row),
				DistrictCode: row.Code,
				DistrictName: row.Name,
			})
		case models.LocationTypeMunicipality:
			doc.Municipalities = append(doc.Municipalities, municipalityExportXml{
				DistrictCode:     parentCode(row),
				MunicipalityCode: row.Code,
				MunicipalityName: row.Name,
			})
		case models.LocationTypeVillage:
			doc.Villages = append(doc.Villages, villageExportXml{
				MunicipalityCode: parentCode(row),
				VillageCode:      row.Code,
				VillageName:      row.Name,
				MalePopulation:   intOrZero(row.MalePopulation),
				FemalePopulation: intOrZero(row.FemalePopulation),
				OtherPopulation:  intOrZero(row.OtherPopulation),
				Families:         intOrZero(row.Families),
			})
		}
	}
	return xml.MarshalIndent(doc, "", "  ")
}

type healthFacilityExportXml struct {
	DistrictCode          string  `xml:"DistrictCode"`
	DistrictName          string  `xml:"DistrictName"`
	Code                  string  `xml:"Code"`
	Name                  string  `xml:"Name"`
	LegalForm             string  `xml:"LegalForm"`
	Level                 string  `xml:"Level"`
	SubLevel              *string `xml:"SubLevel"`
	Address               *string `xml:"Address"`
	Phone                 *string `xml:"Phone"`
	Fax                   *string `xml:"Fax"`
	Email                 *string `xml:"Email"`
	CareType              string  `xml:"CareType"`
	AccountCode           *string `xml:"AccountCode"`
	ItemsPricelistName    *string `xml:"ItemsPricelistName"`
	ServicesPricelistName *string `xml:"ServicesPricelistName"`
}

type healthFacilitiesExportFile struct {
	XMLName    xml.Name                  `xml:"HealthFacilities"`
	Facilities []healthFacilityExportXml `xml:"HealthFacilityDetails>HealthFacility"`
}

func ExportHealthFacilitiesXML(ctx context.Context) ([]byte, error) {
	rows, err := models.FindAllValid[models.HealthFacility](ctx)
	if err != nil {
		return nil, err
	}
	locations, err := models.FindAllValid[models.Location](ctx)
	if err != nil {
		return nil, err
	}
	itemsPricelists, err := models.PricelistNamesById[models.ItemsPricelist](ctx)
	if err != nil {
		return nil, err
	}
	servicesPricelists, err := models.PricelistNamesById[models.ServicesPricelist](ctx)
	if err != nil {
		return nil, err
	}

	locationsById := make(map[int]models.Location, len(locations))
	for _, loc := range locations {
		locationsById[loc.ID] = loc
	}

	doc := healthFacilitiesExportFile{}
	for _, row := range rows {
		entry := healthFacilityExportXml{
			Code:        row.Code,
			Name:        row.Name,
			LegalForm:   row.LegalForm,
			Level:       row.Level,
			SubLevel:    row.SubLevel,
			Address:     row.Address,
			Phone:       row.Phone,
			Fax:         row.Fax,
			Email:       row.Email,
			CareType:    row.CareType,
			AccountCode: row.AccCode,
		}
		if district, ok := locationsById[row.LocationId]; ok {
			entry.DistrictCode = district.Code
			entry.DistrictName = district.Name
		}
		if row.ItemsPricelistId != nil {
			if name, ok := itemsPricelists[*row.ItemsPricelistId]; ok {
				entry.ItemsPricelistName = &name
			}
		}
		if row.ServicesPricelistId != nil {
			if name, ok := servicesPricelists[*row.ServicesPricelistId]; ok {
				entry.ServicesPricelistName = &name
			}
		}
		doc.Facilities = append(doc.Facilities, entry)
	}
	return xml.MarshalIndent(doc, "", "  ")
}

type itemExportXml struct {
	Code           string  `xml:"ItemCode"`
	Name           string  `xml:"ItemName"`
	Type           string  `xml:"ItemType"`
	Price          string  `xml:"ItemPrice"`
	CareType       string  `xml:"ItemCareType"`
	MaleCategory   int     `xml:"ItemMaleCategory"`
	FemaleCategory int     `xml:"ItemFemaleCategory"`
	AdultCategory  int     `xml:"ItemAdultCategory"`
	MinorCategory  int     `xml:"ItemMinorCategory"`
	Quantity       *string `xml:"ItemQuantity"`
	Frequency      *int    `xml:"ItemFrequency"`
	Package        *string `xml:"ItemPackage"`
}

type itemsExportFile struct {
	XMLName xml.Name        `xml:"Items"`
	Items   []itemExportXml `xml:"Item"`
}

func categoryFlag(patientCategory, mask int) int {
	if patientCategory&mask != 0 {
		return 1
	}
	return 0
}

func ExportItemsXML(ctx context.Context) ([]byte, error) {
	rows, err := models.FindAllValid[models.Item](ctx)
	if err != nil {
		return nil, err
	}
	doc := itemsExportFile{}
	for _, row := range rows {
		entry := itemExportXml{
			Code:           row.Code,
			Name:           row.Name,
			Type:           row.Type,
			Price:          row.Price.String(),
			CareType:       row.CareType,
			MaleCategory:   categoryFlag(row.PatientCategory, models.PatientCategoryMale),
			FemaleCategory: categoryFlag(row.PatientCategory, models.PatientCategoryFemale),
			AdultCategory:  categoryFlag(row.PatientCategory, models.PatientCategoryAdult),
			MinorCategory:  categoryFlag(row.PatientCategory, models.PatientCategoryMinor),
			Frequency:      row.Frequency,
			Package:        row.Package,
		}
		if row.Quantity != nil {
			quantity := row.Quantity.String()
			entry.Quantity = &quantity
		}
		doc.Items = append(doc.Items, entry)
	}
	return xml.MarshalIndent(doc, "", "  ")
}

type serviceExportXml struct {
	Code           string  `xml:"ServiceCode"`
	Name           string  `xml:"ServiceName"`
	Type           string  `xml:"ServiceType"`
	Level          string  `xml:"ServiceLevel"`
	Price          string  `xml:"ServicePrice"`
	CareType       string  `xml:"ServiceCareType"`
	MaleCategory   int     `xml:"ServiceMaleCategory"`
	FemaleCategory int     `xml:"ServiceFemaleCategory"`
	AdultCategory  int     `xml:"ServiceAdultCategory"`
	MinorCategory  int     `xml:"ServiceMinorCategory"`
	Category       *string `xml:"ServiceCategory"`
	Frequency      *int    `xml:"ServiceFrequency"`
}

type servicesExportFile struct {
	XMLName  xml.Name           `xml:"Services"`
	Services []serviceExportXml `xml:"Service"`
}

func ExportServicesXML(ctx context.Context) ([]byte, error) {
	rows, err := models.FindAllValid[models.MedicalService](ctx)
	if err != nil {
		return nil, err
	}
	doc := servicesExportFile{}
	for _, row := range rows {
		doc.Services = append(doc.Services, serviceExportXml{
			Code:           row.Code,
			Name:           row.Name,
			Type:           row.Type,
			Level:          row.Level,
			Price:          row.Price.String(),
			CareType:       row.CareType,
			MaleCategory:   categoryFlag(row.PatientCategory, models.PatientCategoryMale),
			FemaleCategory: categoryFlag(row.PatientCategory, models.PatientCategoryFemale),
			AdultCategory:  categoryFlag(row.PatientCategory, models.PatientCategoryAdult),
			MinorCategory:  categoryFlag(row.PatientCategory, models.PatientCategoryMinor),
			Category:       row.Category,
			Frequency:      row.Frequency,
		})
	}
	return xml.MarshalIndent(doc, "", "  ")
}
