package registers

import (
	"context"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

type HealthFacilityEntry struct {
	Code         string
	Name         string
	LegalForm    string
	Level        string
	CareType     string
	DistrictCode string

	SubLevel              *string
	Address               *string
	Phone                 *string
	Fax                   *string
	Email                 *string
	AccCode               *string
	ItemsPricelistName    *string
	ServicesPricelistName *string

	locationId          int
	itemsPricelistId    *int
	servicesPricelistId *int
}

func (e HealthFacilityEntry) GetCode() string {
	return e.Code
}

type healthFacilityXml struct {
	LegalForm             *string `xml:"LegalForm"`
	Level                 *string `xml:"Level"`
	SubLevel              *string `xml:"SubLevel"`
	Code                  *string `xml:"Code"`
	Name                  *string `xml:"Name"`
	Address               *string `xml:"Address"`
	DistrictCode          *string `xml:"DistrictCode"`
	Phone                 *string `xml:"Phone"`
	Fax                   *string `xml:"Fax"`
	Email                 *string `xml:"Email"`
	CareType              *string `xml:"CareType"`
	AccountCode           *string `xml:"AccountCode"`
	ItemsPricelistName    *string `xml:"ItemsPricelistName"`
	ServicesPricelistName *string `xml:"ServicesPricelistName"`
}

type healthFacilitiesXmlFile struct {
	Details *struct {
		Facilities []healthFacilityXml `xml:"HealthFacility"`
	} `xml:"HealthFacilityDetails"`
}

func optionalText(elm *string) *string {
	if text, ok := xmlText(elm); ok {
		return &text
	}
	return nil
}

// ParseHealthFacilitiesXML reads a health facilities upload file. Absent or
// blank elements stay unset, so updates only touch the fields the file
// carries.
func ParseHealthFacilitiesXML(r io.Reader) ([]HealthFacilityEntry, []string, error) {
	var doc healthFacilitiesXmlFile
	if err := parseXmlDocument(r, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Details == nil {
		return nil, nil, utils.ErrorInvalidXML
	}

	var entries []HealthFacilityEntry
	var errors []string
	for _, elm := range doc.Details.Facilities {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		if !okCode || !okName {
			errors = append(errors, "Health facility has no code or no name defined")
			continue
		}
		legalForm, okLegalForm := xmlText(elm.LegalForm)
		if !okLegalForm {
			errors = append(errors, fmt.Sprintf("Health facility '%s' has no legal form defined", code))
			continue
		}
		level, okLevel := xmlText(elm.Level)
		if !okLevel {
			errors = append(errors, fmt.Sprintf("Health facility '%s' has no level defined", code))
			continue
		}
		careType, okCareType := xmlText(elm.CareType)
		if !okCareType {
			errors = append(errors, fmt.Sprintf("Health facility '%s' has no care type defined", code))
			continue
		}

		district, _ := xmlText(elm.DistrictCode)
		entries = append(entries, HealthFacilityEntry{
			Code:                  code,
			Name:                  name,
			LegalForm:             legalForm,
			Level:                 level,
			CareType:              careType,
			DistrictCode:          district,
			SubLevel:              optionalText(elm.SubLevel),
			Address:               optionalText(elm.Address),
			Phone:                 optionalText(elm.Phone),
			Fax:                   optionalText(elm.Fax),
			Email:                 optionalText(elm.Email),
			AccCode:               optionalText(elm.AccountCode),
			ItemsPricelistName:    optionalText(elm.ItemsPricelistName),
			ServicesPricelistName: optionalText(elm.ServicesPricelistName),
		})
	}
	return entries, errors, nil
}

type healthFacilityAdapter struct {
	districts         *lookupCache[models.Location]
	itemsPricelists   *lookupCache[models.ItemsPricelist]
	servicePricelists *lookupCache[models.ServicesPricelist]
}

func newHealthFacilityAdapter() *healthFacilityAdapter {
	return &healthFacilityAdapter{
		districts: newLookupCache(func(ctx context.Context, code string) (*models.Location, error) {
			return models.FindValidWhere[models.Location](ctx, "code = ?", code)
		}),
		itemsPricelists: newLookupCache(func(ctx context.Context, name string) (*models.ItemsPricelist, error) {
			return models.FindValidWhere[models.ItemsPricelist](ctx, "name = ?", name)
		}),
		servicePricelists: newLookupCache(func(ctx context.Context, name string) (*models.ServicesPricelist, error) {
			return models.FindValidWhere[models.ServicesPricelist](ctx, "name = ?", name)
		}),
	}
}

func (a *healthFacilityAdapter) FindExisting(ctx context.Context, codes []string) ([]models.HealthFacility, error) {
	return models.FindValidByCodes[models.HealthFacility](ctx, codes)
}

func (a *healthFacilityAdapter) Prepare(ctx context.Context, entry *HealthFacilityEntry) error {
	district, err := a.districts.Get(ctx, entry.DistrictCode)
	if err != nil {
		return err
	}
	if district == nil {
		return fmt.Errorf("Location '%s' does not exist", entry.DistrictCode)
	}
	entry.locationId = district.ID

	if entry.ItemsPricelistName != nil {
		pricelist, err := a.itemsPricelists.Get(ctx, *entry.ItemsPricelistName)
		if err != nil {
			return err
		}
		if pricelist == nil {
			return fmt.Errorf("Items price list '%s' does not exist", *entry.ItemsPricelistName)
		}
		entry.itemsPricelistId = &pricelist.ID
	}
	if entry.ServicesPricelistName != nil {
		pricelist, err := a.servicePricelists.Get(ctx, *entry.ServicesPricelistName)
		if err != nil {
			return err
		}
		if pricelist == nil {
			return fmt.Errorf("Services price list '%s' does not exist", *entry.ServicesPricelistName)
		}
		entry.servicesPricelistId = &pricelist.ID
	}
	return nil
}

func (a *healthFacilityAdapter) Create(ctx context.Context, entry HealthFacilityEntry, auditUserId int) error {
	row := models.HealthFacility{
		Code:                entry.Code,
		Name:                entry.Name,
		LegalForm:           entry.LegalForm,
		Level:               entry.Level,
		SubLevel:            entry.SubLevel,
		Address:             entry.Address,
		LocationId:          entry.locationId,
		Phone:               entry.Phone,
		Fax:                 entry.Fax,
		Email:               entry.Email,
		CareType:            entry.CareType,
		AccCode:             entry.AccCode,
		ItemsPricelistId:    entry.itemsPricelistId,
		ServicesPricelistId: entry.servicesPricelistId,
		Offline:             false,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	return models.CreateRegisterRow(ctx, &row)
}

func (a *healthFacilityAdapter) Update(ctx context.Context, existing models.HealthFacility, entry HealthFacilityEntry) error {
	// Absent pricelist names clear the reference so an update can detach a
	// facility from its pricelists.
	updates := map[string]interface{}{
		"code":                  entry.Code,
		"name":                  entry.Name,
		"legal_form":            entry.LegalForm,
		"level":                 entry.Level,
		"care_type":             entry.CareType,
		"location_id":           entry.locationId,
		"items_pricelist_id":    entry.itemsPricelistId,
		"services_pricelist_id": entry.servicesPricelistId,
	}
	if entry.SubLevel != nil {
		updates["sub_level"] = *entry.SubLevel
	}
	if entry.Address != nil {
		updates["address"] = *entry.Address
	}
	if entry.Phone != nil {
		updates["phone"] = *entry.Phone
	}
	if entry.Fax != nil {
		updates["fax"] = *entry.Fax
	}
	if entry.Email != nil {
		updates["email"] = *entry.Email
	}
	if entry.AccCode != nil {
		updates["acc_code"] = *entry.AccCode
	}
	return models.UpdateRegisterRow(ctx, "HealthFacility", &existing, updates)
}

func (a *healthFacilityAdapter) ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	return models.ArchiveWhereCodeNotIn[models.HealthFacility](ctx, "HealthFacility", keepCodes, auditUserId, dryRun)
}

// UploadHealthFacilities parses and reconciles a health facilities upload
// file. District and pricelist caches live for this call only.
func UploadHealthFacilities(ctx context.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*UploadResult, error) {
	entries, parseErrors, err := ParseHealthFacilitiesXML(file)
	if err != nil {
		return nil, err
	}
	return UploadRegister(ctx, auditUserId, UploadContext[HealthFacilityEntry, models.HealthFacility]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       newHealthFacilityAdapter(),
		Strategy:      strategy,
		DryRun:        dryRun,
		Label:         "Health facility",
		LabelPlural:   "health facilities",
	})
}
