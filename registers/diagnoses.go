package registers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/imis_backend/models"
)

type DiagnosisEntry struct {
	Code string
	Name string
}

func (e DiagnosisEntry) GetCode() string {
	return e.Code
}

type diagnosisXml struct {
	Code *string `xml:"DiagnosisCode"`
	Name *string `xml:"DiagnosisName"`
}

type diagnosesXmlFile struct {
	XMLName   xml.Name       `xml:"Diagnoses"`
	Diagnoses []diagnosisXml `xml:"Diagnosis"`
}

// ParseDiagnosesXML reads a diagnoses upload file. Per-entry violations are
// returned as errors alongside the accepted entries; only a malformed
// document is fatal.
func ParseDiagnosesXML(r io.Reader) ([]DiagnosisEntry, []string, error) {
	var doc diagnosesXmlFile
	if err := parseXmlDocument(r, &doc); err != nil {
		return nil, nil, err
	}

	var entries []DiagnosisEntry
	var errors []string
	var seen []string
	for _, elm := range doc.Diagnoses {
		code, okCode := xmlText(elm.Code)
		name, okName := xmlText(elm.Name)
		if !okCode || !okName {
			errors = append(errors, "Diagnosis has no code or no name")
			continue
		}

		switch {
		case hasDuplicateCode(seen, code):
			errors = append(errors, fmt.Sprintf("'%s' is already present in the list", code))
		case len(code) > 6:
			errors = append(errors, fmt.Sprintf("Code cannot be longer than 6 characters: '%s'", code))
		case len(name) > 255:
			errors = append(errors, fmt.Sprintf("Name cannot be longer than 255 characters: '%s'", name))
		default:
			entries = append(entries, DiagnosisEntry{Code: code, Name: name})
			seen = append(seen, code)
		}
	}
	return entries, errors, nil
}

type diagnosisAdapter struct{}

func (diagnosisAdapter) FindExisting(ctx context.Context, codes []string) ([]models.Diagnosis, error) {
	return models.FindValidByCodes[models.Diagnosis](ctx, codes)
}

func (diagnosisAdapter) Prepare(ctx context.Context, entry *DiagnosisEntry) error {
	return nil
}

func (diagnosisAdapter) Create(ctx context.Context, entry DiagnosisEntry, auditUserId int) error {
	row := models.Diagnosis{
		Code: entry.Code,
		Name: entry.Name,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	return models.CreateRegisterRow(ctx, &row)
}

func (diagnosisAdapter) Update(ctx context.Context, existing models.Diagnosis, entry DiagnosisEntry) error {
	return models.UpdateRegisterRow(ctx, "Diagnosis", &existing, map[string]interface{}{
		"code": entry.Code,
		"name": entry.Name,
	})
}

func (diagnosisAdapter) ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error) {
	return models.ArchiveWhereCodeNotIn[models.Diagnosis](ctx, "Diagnosis", keepCodes, auditUserId, dryRun)
}

// UploadDiagnoses parses and reconciles a diagnoses upload file.
func UploadDiagnoses(ctx context.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*UploadResult, error) {
	entries, parseErrors, err := ParseDiagnosesXML(file)
	if err != nil {
		return nil, err
	}
	return UploadRegister(ctx, auditUserId, UploadContext[DiagnosisEntry, models.Diagnosis]{
		Entries:       entries,
		ParsingErrors: parseErrors,
		Adapter:       diagnosisAdapter{},
		Strategy:      strategy,
		DryRun:        dryRun,
		Label:         "Diagnosis",
		LabelPlural:   "diagnoses",
	})
}
