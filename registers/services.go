package registers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/imis_backend/models"
)

type ServiceEntry struct {
	Code            string
	Name            string
	Type            string
	Level           string
	Price           decimal.Decimal
	CareType        string
	PatientCategory int
	Category        *string
	Frequency       *int
}

func (e ServiceEntry) GetCode() string {
	return e.Code
}

type serviceXml struct {
	Code           *string `xml:"ServiceCode"`
	Name           *string `xml:"ServiceName"`
	Type           *string `xml:"ServiceType"`
	Level          *string `xml:"ServiceLevel"`
	Price          *string `xml:"ServicePrice"`
	CareType       *string `xml:"ServiceCareType"`
	MaleCategory   *string `xml:"ServiceMaleCategory"`
	FemaleCategory *string `xml:"ServiceFemaleCategory"`
	AdultCategory  *string `xml:"ServiceAdultCategory"`
	MinorCategory  *string `xml:"ServiceMinorCategory"`
	Category       *string `xml:"ServiceCategory"`
	Frequency      *string `xml:"ServiceFrequency"`
}

type servicesXmlFile struct {
	XMLName  xml.Name     `xml:"Services"`
	Services []serviceXml `xml:"Service"`
}

// ParseServicesXML reads a medical services upload file, enforcing the
// service field constraints. Rejected entries produce one error each and
// are dropped.
func ParseServicesXML(r io.Reader) ([]ServiceEntry, []string, error) {
	var doc servicesXmlFile
	if err := parseXmlDocument(r, &doc); err != nil {
		return nil, nil, err
	}

	var entries []ServiceEntry
	var errors []string
	var seen []string
	for _, elm := range doc.Services {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		serviceType, okType := xmlText(elm.Type)
		level, okLevel := xmlText(elm.Level)
		rawPrice, okPrice := xmlText(elm.Price)
		careType, okCareType := xmlText(elm.CareType)
		_, okMale := xmlText(elm.MaleCategory)
		_, okFemale := xmlText(elm.FemaleCategory)
		_, okAdult := xmlText(elm.AdultCategory)
		_, okMinor := xmlText(elm.MinorCategory)
		if !okCode || !okName || !okType || !okLevel || !okPrice || !okCareType ||
			!okMale || !okFemale || !okAdult || !okMinor {
			errors = append(errors, "Service is missing one of the following fields: code, name, type, level, "+
				"price, care type, male category, female category, adult category or minor category.")
			continue
		}
		serviceType = strings.ToUpper(serviceType)
		level = strings.ToUpper(level)
		careType = strings.ToUpper(careType)

		price, priceErr := decimal.NewFromString(rawPrice)
		if priceErr != nil {
			errors = append(errors, fmt.Sprintf("Service '%s': price is invalid. Please use '.' "+
				"as decimal separator, without any currency symbol.", code))
			continue
		}
		flags, okFlags := parseCategoryFlags([]*string{elm.MaleCategory, elm.FemaleCategory, elm.AdultCategory, elm.MinorCategory})
		if !okFlags {
			errors = append(errors, fmt.Sprintf("Service '%s': patient categories are invalid. "+
				"Please use '0' for no or '1' for yes", code))
			continue
		}

		switch {
		case hasDuplicateCode(seen, code):
			errors = append(errors, fmt.Sprintf("Service '%s': exists multiple times in the list", code))
		case len(code) < 1 || len(code) > 6:
			errors = append(errors, fmt.Sprintf("Service '%s': code is invalid. Must be between 1 and 6 characters", code))
		case len(name) < 1 || len(name) > 100:
			errors = append(errors, fmt.Sprintf("Service '%s': name is invalid ('%s'). Must be between 1 and 100 characters", code, name))
		case !containsString(serviceTypeValues, serviceType):
			errors = append(errors, fmt.Sprintf("Service '%s': type is invalid ('%s'). "+
				"Must be one of the following: %s", code, serviceType, strings.Join(serviceTypeValues, ", ")))
		case !containsString(serviceLevelValues, level):
			errors = append(errors, fmt.Sprintf("Service '%s': level is invalid ('%s'). "+
				"Must be one of the following: %s", code, level, strings.Join(serviceLevelValues, ", ")))
		case !containsString(careTypeValues, careType):
			errors = append(errors, fmt.Sprintf("Service '%s': care type is invalid ('%s'). "+
				"Must be one of the following: %s", code, careType, strings.Join(careTypeValues, ", ")))
		default:
			entry := ServiceEntry{
				Code:            code,
				Name:            name,
				Type:            serviceType,
				Level:           level,
				Price:           price,
				CareType:        careType,
				PatientCategory: patientCategoryMask(flags[0], flags[1], flags[2], flags[3]),
			}
			if msg, ok := parseOptionalServiceFields(elm, code, &entry); !ok {
				errors = append(errors, msg)
				continue
			}
			entries = append(entries, entry)
			seen = append(seen, code)
		}
	}
	return entries, errors, nil
}

func parseOptionalServiceFields(elm serviceXml, code string, entry *ServiceEntry) (string, bool) {
	if frequency, present, err := xmlInt(elm.Frequency); present {
		if err != nil {
			return fmt.Sprintf("Service '%s': frequency is invalid. Please enter a non decimal number of days.", code), false
		}
		entry.Frequency = &frequency
	}
	if raw, ok := xmlText(elm.Category); ok {
		category := strings.ToUpper(raw)
		if !containsString(serviceCategoryValues, category) {
			return fmt.Sprintf("Service '%s': category is invalid ('%s'). "+
				"Must be one of the following: %s", code, category, strings.Join(serviceCategoryValues, ", ")), false
		}
		entry.Category = &category
	}
	return "", true
}

type serviceAdapter struct{}

func (serviceAdapter) FindExisting(ctx context.Context, codes []string) ([]models.MedicalService, error) {
	return models.FindValidByCodes[models.MedicalService](ctx, codes)
}

func (serviceAdapter) Prepare(ctx context.Context, entry *ServiceEntry) error {
	return nil
}

func (serviceAdapter) Create(ctx context.Context, entry ServiceEntry, auditUserId int) error {
	row := models.MedicalService{
		Code:            entry.Code,
		Name:            entry.Name,
		Type:            entry.Type,
		Level:           entry.Level,
		Price:           entry.Price,
		CareType:        entry.CareType,
		PatientCategory: entry.PatientCategory,
		Category:        entry.Category,
		Frequency:       entry.Frequency,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	return models.CreateRegisterRow(ctx, &row)
}

func (serviceAdapter) Update(ctx context.Context, existing models.MedicalService, entry ServiceEntry) error {
	updates := map[string]interface{}{
		"code":             entry.Code,
		"name":             entry.Name,
		"type":             entry.Type,
		"level":            entry.Level,
		"price":            entry.Price,
		"care_type":        entry.CareType,
		"patient_category": entry.PatientCategory,
	}
	if entry.Category != nil {
		updates["category"] = *entry.Category
	}
	if entry.Frequency != nil {
		updates["frequency"] = *entry.Frequency
	}
	return models.UpdateRegisterRow(ctx, "MedicalService", &existing, updates)
}

func (serviceAdapter) ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	return models.ArchiveWhereCodeNotIn[models.MedicalService](ctx, "MedicalService", keepCodes, auditUserId, dryRun)
}

// UploadServices parses and reconciles a medical services upload file.
func UploadServices(ctx context.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*UploadResult, error) {
	entries, parseErrors, err := ParseServicesXML(file)
	if err != nil {
		return nil, err
	}
	return UploadRegister(ctx, auditUserId, UploadContext[ServiceEntry, models.MedicalService]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       serviceAdapter{},
		Strategy:      strategy,
		DryRun:        dryRun,
		Label:         "Service",
		LabelPlural:   "services",
	})
}
