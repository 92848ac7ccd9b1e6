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

// Allowed value sets for the medical registers.
var (
	itemTypeValues        = []string{"D", "M"}
	serviceTypeValues     = []string{"P", "C"}
	careTypeValues        = []string{"I", "O", "B"}
	serviceLevelValues    = []string{"S", "V", "D", "H"}
	serviceCategoryValues = []string{"S", "D", "A", "H", "O", "V"}
)

type ItemEntry struct {
	Code            string
	Name            string
	Type            string
	Price           decimal.Decimal
	CareType        string
	PatientCategory int
	Quantity        *decimal.Decimal
	Frequency       *int
	Package         *string
}

func (e ItemEntry) GetCode() string {
	return e.Code
}

type itemXml struct {
	Code           *string `xml:"ItemCode"`
	Name           *string `xml:"ItemName"`
	Type           *string `xml:"ItemType"`
	Price          *string `xml:"ItemPrice"`
	CareType       *string `xml:"ItemCareType"`
	MaleCategory   *string `xml:"ItemMaleCategory"`
	FemaleCategory *string `xml:"ItemFemaleCategory"`
	AdultCategory  *string `xml:"ItemAdultCategory"`
	MinorCategory  *string `xml:"ItemMinorCategory"`
	Quantity       *string `xml:"ItemQuantity"`
	Frequency      *string `xml:"ItemFrequency"`
	Package        *string `xml:"ItemPackage"`
}

type itemsXmlFile struct {
	XMLName xml.Name  `xml:"Items"`
	Items   []itemXml `xml:"Item"`
}

// patientCategoryMask combines the four yes/no category flags into the
// stored bitmask.
func patientCategoryMask(male, female, adult, minor int) int {
	category := 0
	if male != 0 {
		category |= models.PatientCategoryMale
	}
	if female != 0 {
		category |= models.PatientCategoryFemale
	}
	if adult != 0 {
		category |= models.PatientCategoryAdult
	}
	if minor != 0 {
		category |= models.PatientCategoryMinor
	}
	return category
}

func parseCategoryFlags(elms []*string) ([]int, bool) {
	flags := make([]int, 0, len(elms))
	for _, elm := range elms {
		value, ok, err := xmlInt(elm)
		if !ok || err != nil || (value != 0 && value != 1) {
			return nil, false
		}
		flags = append(flags, value)
	}
	return flags, true
}

// ParseItemsXML reads a medical items upload file, enforcing the item field
// constraints. Rejected entries produce one error each and are dropped.
func ParseItemsXML(r io.Reader) ([]ItemEntry, []string, error) {
	var doc itemsXmlFile
	if err := parseXmlDocument(r, &doc); err != nil {
		return nil, nil, err
	}

	var entries []ItemEntry
	var errors []string
	var seen []string
	for _, elm := range doc.Items {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		itemType, okType := xmlText(elm.Type)
		rawPrice, okPrice := xmlText(elm.Price)
		careType, okCareType := xmlText(elm.CareType)
		_, okMale := xmlText(elm.MaleCategory)
		_, okFemale := xmlText(elm.FemaleCategory)
		_, okAdult := xmlText(elm.AdultCategory)
		_, okMinor := xmlText(elm.MinorCategory)
		if !okCode || !okName || !okType || !okPrice || !okCareType ||
			!okMale || !okFemale || !okAdult || !okMinor {
			errors = append(errors, "Item is missing one of the following fields: code, name, type, price, "+
				"care type, male category, female category, adult category or minor category.")
			continue
		}
		itemType = strings.ToUpper(itemType)
		careType = strings.ToUpper(careType)

		price, priceErr := decimal.NewFromString(rawPrice)
		if priceErr != nil {
			errors = append(errors, fmt.Sprintf("Item '%s': price is invalid. Please use '.' "+
				"as decimal separator, without any currency symbol.", code))
			continue
		}
		flags, okFlags := parseCategoryFlags([]*string{elm.MaleCategory, elm.FemaleCategory, elm.AdultCategory, elm.MinorCategory})
		if !okFlags {
			errors = append(errors, fmt.Sprintf("Item '%s': patient categories are invalid. "+
				"Please use '0' for no or '1' for yes", code))
			continue
		}

		switch {
		case hasDuplicateCode(seen, code):
			errors = append(errors, fmt.Sprintf("Item '%s': exists multiple times in the list", code))
		case len(code) < 1 || len(code) > 6:
			errors = append(errors, fmt.Sprintf("Item '%s': code is invalid. Must be between 1 and 6 characters", code))
		case len(name) < 1 || len(name) > 100:
			errors = append(errors, fmt.Sprintf("Item '%s': name is invalid ('%s'). Must be between 1 and 100 characters", code, name))
		case !containsString(itemTypeValues, itemType):
			errors = append(errors, fmt.Sprintf("Item '%s': type is invalid ('%s'). "+
				"Must be one of the following: %s", code, itemType, strings.Join(itemTypeValues, ", ")))
		case !containsString(careTypeValues, careType):
			errors = append(errors, fmt.Sprintf("Item '%s': care type is invalid ('%s'). "+
				"Must be one of the following: %s", code, careType, strings.Join(careTypeValues, ", ")))
		default:
			entry := ItemEntry{
				Code:            code,
				Name:            name,
				Type:            itemType,
				Price:           price,
				CareType:        careType,
				PatientCategory: patientCategoryMask(flags[0], flags[1], flags[2], flags[3]),
			}
			if msg, ok := parseOptionalItemFields(elm, code, &entry); !ok {
				errors = append(errors, msg)
				continue
			}
			entries = append(entries, entry)
			seen = append(seen, code)
		}
	}
	return entries, errors, nil
}

func parseOptionalItemFields(elm itemXml, code string, entry *ItemEntry) (string, bool) {
	if raw, ok := xmlText(elm.Quantity); ok {
		quantity, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Sprintf("Item '%s': quantity is invalid. Please use '.' as decimal separator.", code), false
		}
		entry.Quantity = &quantity
	}
	if frequency, present, err := xmlInt(elm.Frequency); present {
		if err != nil {
			return fmt.Sprintf("Item '%s': frequency is invalid. Please enter a non decimal number of days.", code), false
		}
		entry.Frequency = &frequency
	}
	if pkg, ok := xmlText(elm.Package); ok {
		if len(pkg) > 255 {
			return fmt.Sprintf("Item '%s': package is invalid ('%s'). Must be between 1 and 255 characters", code, pkg), false
		}
		entry.Package = &pkg
	}
	return "", true
}

type itemAdapter struct{}

func (itemAdapter) FindExisting(ctx context.Context, codes []string) ([]models.Item, error) {
	return models.FindValidByCodes[models.Item](ctx, codes)
}

func (itemAdapter) Prepare(ctx context.Context, entry *ItemEntry) error {
	return nil
}

func (itemAdapter) Create(ctx context.Context, entry ItemEntry, auditUserId int) error {
	row := models.Item{
		Code:            entry.Code,
		Name:            entry.Name,
		Type:            entry.Type,
		Price:           entry.Price,
		CareType:        entry.CareType,
		PatientCategory: entry.PatientCategory,
		Quantity:        entry.Quantity,
		Frequency:       entry.Frequency,
		Package:         entry.Package,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	return models.CreateRegisterRow(ctx, &row)
}

func (itemAdapter) Update(ctx context.Context, existing models.Item, entry ItemEntry) error {
	updates := map[string]interface{}{
		"code":             entry.Code,
		"name":             entry.Name,
		"type":             entry.Type,
		"price":            entry.Price,
		"care_type":        entry.CareType,
		"patient_category": entry.PatientCategory,
	}
	if entry.Quantity != nil {
		updates["quantity"] = *entry.Quantity
	}
	if entry.Frequency != nil {
		updates["frequency"] = *entry.Frequency
	}
	if entry.Package != nil {
		updates["package"] = *entry.Package
	}
	return models.UpdateRegisterRow(ctx, "Item", &existing, updates)
}

func (itemAdapter) ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	return models.ArchiveWhereCodeNotIn[models.Item](ctx, "Item", keepCodes, auditUserId, dryRun)
}

// UploadItems parses and reconciles a medical items upload file.
func UploadItems(ctx context.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*UploadResult, error) {
	entries, parseErrors, err := ParseItemsXML(file)
	if err != nil {
		return nil, err
	}
	return UploadRegister(ctx, auditUserId, UploadContext[ItemEntry, models.Item]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       itemAdapter{},
		Strategy:      strategy,
		DryRun:        dryRun,
		Label:         "Item",
		LabelPlural:   "items",
	})
}
