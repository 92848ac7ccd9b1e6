package registers

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm/clause"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

type LocationEntry struct {
	Code             string
	Name             string
	Type             string
	ParentCode       string
	MalePopulation   *int
	FemalePopulation *int
	OtherPopulation  *int
	Families         *int

	parentId *int
}

func (e LocationEntry) GetCode() string {
	return e.Code
}

type regionXml struct {
	Code *string `xml:"RegionCode"`
	Name *string `xml:"RegionName"`
}

type districtXml struct {
	RegionCode *string `xml:"RegionCode"`
	Code       *string `xml:"DistrictCode"`
	Name       *string `xml:"DistrictName"`
}

type municipalityXml struct {
	DistrictCode *string `xml:"DistrictCode"`
	Code         *string `xml:"MunicipalityCode"`
	Name         *string `xml:"MunicipalityName"`
}

type villageXml struct {
	MunicipalityCode *string `xml:"MunicipalityCode"`
	Code             *string `xml:"VillageCode"`
	Name             *string `xml:"VillageName"`
	MalePopulation   *string `xml:"MalePopulation"`
	FemalePopulation *string `xml:"FemalePopulation"`
	OtherPopulation  *string `xml:"OtherPopulation"`
	Families         *string `xml:"Families"`
}

type locationsXmlFile struct {
	Regions *struct {
		Regions []regionXml `xml:"Region"`
	} `xml:"Regions"`
	Districts *struct {
		Districts []districtXml `xml:"District"`
	} `xml:"Districts"`
	Municipalities *struct {
		Municipalities []municipalityXml `xml:"Municipality"`
	} `xml:"Municipalities"`
	Villages *struct {
		Villages []villageXml `xml:"Village"`
	} `xml:"Villages"`
}

// ParseLocationsXML reads a locations upload file. Entries come out in
// region, district, municipality, village order so parents created by the
// same file resolve for their children. Codes are unique across all four
// levels.
func ParseLocationsXML(r io.Reader) ([]LocationEntry, []string, error) {
	var doc locationsXmlFile
	if err := parseXmlDocument(r, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Regions == nil || doc.Districts == nil || doc.Municipalities == nil || doc.Villages == nil {
		return nil, nil, utils.ErrorInvalidXML
	}

	var entries []LocationEntry
	var errors []string
	var seen []string

	accept := func(entry LocationEntry, tag string, ok bool) {
		if !ok {
			errors = append(errors, fmt.Sprintf("A field is missing for %s", tag))
			return
		}
		if entry.Code == "" {
			errors = append(errors, "Location has no code")
			return
		}
		if hasDuplicateCode(seen, entry.Code) {
			errors = append(errors, fmt.Sprintf("Code '%s' already exists in the list", entry.Code))
			return
		}
		seen = append(seen, entry.Code)
		entries = append(entries, entry)
	}

	for _, elm := range doc.Regions.Regions {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		accept(LocationEntry{Type: models.LocationTypeRegion, Code: code, Name: name}, "Region", okCode && okName)
	}
	for _, elm := range doc.Districts.Districts {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		parent, okParent := xmlText(elm.RegionCode)
		accept(LocationEntry{Type: models.LocationTypeDistrict, Code: code, Name: name, ParentCode: parent},
			"District", okCode && okName && okParent)
	}
	for _, elm := range doc.Municipalities.Municipalities {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		parent, okParent := xmlText(elm.DistrictCode)
		accept(LocationEntry{Type: models.LocationTypeMunicipality, Code: code, Name: name, ParentCode: parent},
			"Municipality", okCode && okName && okParent)
	}
	for _, elm := range doc.Villages.Villages {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		parent, okParent := xmlText(elm.MunicipalityCode)
		male, okMale, errMale := xmlInt(elm.MalePopulation)
		female, okFemale, errFemale := xmlInt(elm.FemalePopulation)
		other, okOther, errOther := xmlInt(elm.OtherPopulation)
		families, okFamilies, errFamilies := xmlInt(elm.Families)
		if errMale != nil || errFemale != nil || errOther != nil || errFamilies != nil {
			errors = append(errors, fmt.Sprintf("Village '%s': population values must be integers", code))
			continue
		}
		accept(LocationEntry{
			Type:             models.LocationTypeVillage,
			Code:             code,
			Name:             name,
			ParentCode:       parent,
			MalePopulation:   &male,
			FemalePopulation: &female,
			OtherPopulation:  &other,
			Families:         &families,
		}, "Village", okCode && okName && okParent && okMale && okFemale && okOther && okFamilies)
	}

	return entries, errors, nil
}

type locationAdapter struct {
	parents *lookupCache[models.Location]
	// uploaderId is granted each district created by the run.
	uploaderId int
}

func newLocationAdapter(uploaderId int) *locationAdapter {
	return &locationAdapter{
		parents: newLookupCache(func(ctx context.Context, code string) (*models.Location, error) {
			return models.FindValidWhere[models.Location](ctx, "code = ?", code)
		}),
		uploaderId: uploaderId,
	}
}

func (a *locationAdapter) FindExisting(ctx context.Context, codes []string) ([]models.Location, error) {
	return models.FindValidByCodes[models.Location](ctx, codes)
}

// Prepare resolves the parent against storage. A parent defined earlier in
// the same file is found because levels commit in parent-first order; dry
// runs persist nothing, so such a child reports a missing parent instead.
func (a *locationAdapter) Prepare(ctx context.Context, entry *LocationEntry) error {
	if entry.ParentCode == "" {
		return nil
	}
	parent, err := a.parents.Get(ctx, entry.ParentCode)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("Parent '%s' does not exist", entry.ParentCode)
	}
	entry.parentId = &parent.ID
	return nil
}

func (a *locationAdapter) Create(ctx context.Context, entry LocationEntry, auditUserId int) error {
	row := models.Location{
		Code:             entry.Code,
		Name:             entry.Name,
		Type:             entry.Type,
		ParentId:         entry.parentId,
		MalePopulation:   entry.MalePopulation,
		FemalePopulation: entry.FemalePopulation,
		OtherPopulation:  entry.OtherPopulation,
		Families:         entry.Families,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	if err := models.CreateRegisterRow(ctx, &row); err != nil {
		return err
	}
	if row.Type == models.LocationTypeDistrict && a.uploaderId != 0 {
		db := config.GetDB()
		grant := models.UserDistrict{
			UserId:      a.uploaderId,
			LocationId:  row.ID,
			AuditUserId: auditUserId,
		}
		return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
	}
	return nil
}

func (a *locationAdapter) Update(ctx context.Context, existing models.Location, entry LocationEntry) error {
	updates := map[string]interface{}{
		"code": entry.Code,
		"name": entry.Name,
		"type": entry.Type,
	}
	if entry.parentId != nil {
		updates["parent_id"] = *entry.parentId
	}
	if entry.MalePopulation != nil {
		updates["male_population"] = *entry.MalePopulation
	}
	if entry.FemalePopulation != nil {
		updates["female_population"] = *entry.FemalePopulation
	}
	if entry.OtherPopulation != nil {
		updates["other_population"] = *entry.OtherPopulation
	}
	if entry.Families != nil {
		updates["families"] = *entry.Families
	}
	return models.UpdateRegisterRow(ctx, "Location", &existing, updates)
}

func (a *locationAdapter) ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	return models.ArchiveWhereCodeNotIn[models.Location](ctx, "Location", keepCodes, auditUserId, dryRun)
}

// UploadLocations parses and reconciles a locations upload file. The parent
// cache lives for this call only.
func UploadLocations(ctx context.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*UploadResult, error) {
	entries, parseErrors, err := ParseLocationsXML(file)
	if err != nil {
		return nil, err
	}
	return UploadRegister(ctx, auditUserId, UploadContext[LocationEntry, models.Location]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       newLocationAdapter(auditUserId),
		Strategy:      strategy,
		DryRun:        dryRun,
		Label:         "Location",
		LabelPlural:   "locations",
	})
}
