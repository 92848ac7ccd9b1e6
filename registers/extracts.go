package registers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

const extractDateFormat = "02-01-2006"

func buildZip(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// storeExtract persists the bundle (GCS when configured, local directory
// otherwise) and records it in the extracts table. Stored objects carry a
// unique prefix so repeated exports never overwrite each other; the
// download keeps the plain filename.
func storeExtract(ctx context.Context, auditUserId int, extractType int, filename string, data []byte, officerId *int) error {
	objectName := utils.GenerateUniqueFilename() + "_" + filename
	var storedAs string
	if utils.ExtractStorageConfigured() {
		if err := utils.UploadExtractToGCS(ctx, objectName, bytes.NewReader(data)); err != nil {
			return err
		}
		storedAs = "extracts/" + objectName
	} else {
		dir := os.Getenv("EXTRACT_DIRECTORY")
		if dir == "" {
			dir = os.TempDir()
		}
		storedAs = filepath.Join(dir, objectName)
		if err := os.WriteFile(storedAs, data, 0o644); err != nil {
			return err
		}
	}

	extract := models.Extract{
		Direction:   models.ExtractDirectionExport,
		Type:        extractType,
		Filename:    filename,
		StoredAs:    storedAs,
		OfficerId:   officerId,
		AuditUserId: auditUserId,
	}
	return models.CreateExtract(ctx, &extract)
}

// CreateMasterDataExport bundles the currently-valid registers into a
// MasterData.txt JSON file zipped for the mobile clients.
func CreateMasterDataExport(ctx context.Context, auditUserId int) (string, []byte, error) {
	logger := config.GetLogger()
	logger.WithFields(logrus.Fields{"auditUserId": auditUserId}).Info("creating master data export")

	diagnoses, err := models.FindAllValid[models.Diagnosis](ctx)
	if err != nil {
		return "", nil, err
	}
	items, err := models.FindAllValid[models.Item](ctx)
	if err != nil {
		return "", nil, err
	}
	services, err := models.FindAllValid[models.MedicalService](ctx)
	if err != nil {
		return "", nil, err
	}
	locations, err := models.FindAllValid[models.Location](ctx)
	if err != nil {
		return "", nil, err
	}
	facilities, err := models.FindAllValid[models.HealthFacility](ctx)
	if err != nil {
		return "", nil, err
	}
	officers, err := models.FindAllValid[models.Officer](ctx)
	if err != nil {
		return "", nil, err
	}

	payload := map[string]interface{}{
		"diagnoses": diagnoses,
		"items":     items,
		"services":  services,
		"locations": locations,
		"hf":        facilities,
		"officers":  officers,
	}
	data, err := utils.MarshalToJSON(payload)
	if err != nil {
		return "", nil, err
	}
	archive, err := buildZip(map[string][]byte{"MasterData.txt": []byte(data)})
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("master_data_%s.zip", time.Now().Format("20060102T150405"))
	if err := storeExtract(ctx, auditUserId, models.ExtractTypeMasterData, filename, archive, nil); err != nil {
		return "", nil, err
	}
	return filename, archive, nil
}

type officerFeedbackExport struct {
	ClaimId            int     `json:"ClaimID"`
	OfficerId          int     `json:"OfficerID"`
	OfficerCode        string  `json:"OfficerCode"`
	Chfid              string  `json:"CHFID"`
	LastName           string  `json:"LastName"`
	OtherNames         string  `json:"OtherNames"`
	HFCode             string  `json:"HFCode"`
	HFName             string  `json:"HFName"`
	ClaimCode          string  `json:"ClaimCode"`
	DateFrom           string  `json:"DateFrom"`
	DateTo             string  `json:"DateTo"`
	Phone              *string `json:"Phone"`
	FeedbackPromptDate string  `json:"FeedbackPromptDate"`
}

// CreateOfficerFeedbacksExport bundles the open feedback prompts of one
// officer, for claims selected for feedback.
func CreateOfficerFeedbacksExport(ctx context.Context, auditUserId int, officer models.Officer) (string, []byte, error) {
	db := config.GetDB()

	var prompts []models.FeedbackPrompt
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Where("officer_id = ?", officer.ID).
		Find(&prompts).Error
	if err != nil {
		return "", nil, err
	}

	results := make([]officerFeedbackExport, 0, len(prompts))
	for _, prompt := range prompts {
		var claim models.Claim
		err := db.WithContext(ctx).
			Where("validity_to IS NULL").
			Where("feedback_status = ?", models.FeedbackSelected).
			First(&claim, prompt.ClaimId).Error
		if err != nil {
			continue
		}
		insuree, err := models.FindValidWhere[models.Insuree](ctx, "id = ?", claim.InsureeId)
		if err != nil || insuree == nil {
			continue
		}
		facility, err := models.FindValidWhere[models.HealthFacility](ctx, "id = ?", claim.HealthFacilityId)
		if err != nil || facility == nil {
			continue
		}

		entry := officerFeedbackExport{
			ClaimId:            claim.ID,
			OfficerId:          officer.ID,
			OfficerCode:        officer.Code,
			Chfid:              insuree.Chfid,
			LastName:           insuree.LastName,
			OtherNames:         insuree.OtherNames,
			HFCode:             facility.Code,
			HFName:             facility.Name,
			ClaimCode:          claim.Code,
			DateFrom:           claim.DateFrom.Format(extractDateFormat),
			Phone:              officer.Phone,
			FeedbackPromptDate: prompt.FeedbackPromptDate.Format(extractDateFormat),
		}
		if claim.DateTo != nil {
			entry.DateTo = claim.DateTo.Format(extractDateFormat)
		}
		results = append(results, entry)
	}

	data, err := utils.MarshalToJSON(results)
	if err != nil {
		return "", nil, err
	}
	archive, err := buildZip(map[string][]byte{fmt.Sprintf("feedbacks_%s.txt", officer.Code): []byte(data)})
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("feedbacks_%s_%s.zip", officer.Code, time.Now().Format("20060102T150405"))
	if err := storeExtract(ctx, auditUserId, models.ExtractTypeOfficerFeedbacks, filename, archive, &officer.ID); err != nil {
		return "", nil, err
	}
	return filename, archive, nil
}

type officerRenewalExport struct {
	RenewalId   int    `json:"RenewalId"`
	PolicyId    int    `json:"PolicyId"`
	OfficerId   int    `json:"OfficerId"`
	OfficerCode string `json:"OfficerCode"`
	Chfid       string `json:"CHFID"`
	LastName    string `json:"LastName"`
	OtherNames  string `json:"OtherNames"`
	ProductCode string `json:"ProductCode"`
	ProductName string `json:"ProductName"`
	ProdId      int    `json:"ProdId"`
	VillageName string `json:"VillageName"`
	FamilyId    *int   `json:"FamilyId"`
	EnrollDate  string `json:"EnrollDate"`
	PolicyStage string `json:"PolicyStage"`
	PolicyValue string `json:"PolicyValue"`
}

// CreateOfficerRenewalsExport bundles the pending renewal prompts of one
// officer.
func CreateOfficerRenewalsExport(ctx context.Context, auditUserId int, officer models.Officer) (string, []byte, error) {
	db := config.GetDB()

	var renewals []models.PolicyRenewal
	err := db.WithContext(ctx).
		Where("validity_to IS NULL").
		Where("response_date IS NULL").
		Where("officer_id = ?", officer.ID).
		Find(&renewals).Error
	if err != nil {
		return "", nil, err
	}

	results := make([]officerRenewalExport, 0, len(renewals))
	for _, renewal := range renewals {
		insuree, err := models.FindValidWhere[models.Insuree](ctx, "id = ?", renewal.InsureeId)
		if err != nil || insuree == nil {
			continue
		}
		policy, err := models.FindValidWhere[models.Policy](ctx, "id = ?", renewal.PolicyId)
		if err != nil || policy == nil {
			continue
		}
		product, err := models.FindValidWhere[models.Product](ctx, "id = ?", renewal.ProductId)
		if err != nil || product == nil {
			continue
		}

		entry := officerRenewalExport{
			RenewalId:   renewal.ID,
			PolicyId:    renewal.PolicyId,
			OfficerId:   officer.ID,
			OfficerCode: officer.Code,
			Chfid:       insuree.Chfid,
			LastName:    insuree.LastName,
			OtherNames:  insuree.OtherNames,
			ProductCode: product.Code,
			ProductName: product.Name,
			ProdId:      product.ID,
			FamilyId:    insuree.FamilyId,
			EnrollDate:  renewal.RenewalDate.Format(extractDateFormat),
			PolicyStage: "R",
			PolicyValue: policy.Value.String(),
		}
		if insuree.FamilyId != nil {
			family, err := models.FindValidWhere[models.Family](ctx, "id = ?", *insuree.FamilyId)
			if err == nil && family != nil && family.LocationId != nil {
				village, err := models.FindValidWhere[models.Location](ctx, "id = ?", *family.LocationId)
				if err == nil && village != nil {
					entry.VillageName = village.Name
				}
			}
		}
		results = append(results, entry)
	}

	data, err := utils.MarshalToJSON(results)
	if err != nil {
		return "", nil, err
	}
	archive, err := buildZip(map[string][]byte{fmt.Sprintf("renewals_%s.txt", officer.Code): []byte(data)})
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("renewals_%s_%s.zip", officer.Code, time.Now().Format("20060102T150405"))
	if err := storeExtract(ctx, auditUserId, models.ExtractTypeOfficerRenewals, filename, archive, &officer.ID); err != nil {
		return "", nil, err
	}
	return filename, archive, nil
}
