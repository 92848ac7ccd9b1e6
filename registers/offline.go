package registers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

const offlineDateFormat = "2006-01-02"

// readOfflineArchive opens a field archive and returns the contained files
// with the given extension. The mobile clients historically produced
// AES-encrypted archives named .RAR; those must be transcoded to plain zip
// before upload.
func readOfflineArchive(archive []byte, extension string) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, utils.ErrorInvalidArchive
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), extension) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, utils.ErrorInvalidArchive
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, utils.ErrorInvalidArchive
		}
		files[f.Name] = data
	}
	return files, nil
}

type enrollmentFamilyXml struct {
	FamilyId   string `xml:"FamilyId"`
	InsureeId  string `xml:"InsureeId"`
	LocationId string `xml:"LocationId"`
	Poverty    string `xml:"Poverty"`
}

type enrollmentInsureeXml struct {
	InsureeId  string `xml:"InsureeId"`
	FamilyId   string `xml:"FamilyId"`
	Chfid      string `xml:"CHFID"`
	LastName   string `xml:"LastName"`
	OtherNames string `xml:"OtherNames"`
	Dob        string `xml:"DOB"`
	Gender     string `xml:"Gender"`
	IsHead     string `xml:"isHead"`
	Phone      string `xml:"Phone"`
	CardIssued string `xml:"CardIssued"`
}

type enrollmentPolicyXml struct {
	PolicyId   string `xml:"PolicyId"`
	FamilyId   string `xml:"FamilyId"`
	ProdId     string `xml:"ProdId"`
	OfficerId  string `xml:"OfficerId"`
	EnrollDate string `xml:"EnrollDate"`
	StartDate  string `xml:"StartDate"`
	ExpiryDate string `xml:"ExpiryDate"`
	Status     string `xml:"PolicyStatus"`
	Value      string `xml:"PolicyValue"`
}

type enrollmentPremiumXml struct {
	PremiumId string `xml:"PremiumId"`
	PolicyId  string `xml:"PolicyId"`
	Amount    string `xml:"Amount"`
	Receipt   string `xml:"Receipt"`
	PayDate   string `xml:"PayDate"`
	PayType   string `xml:"PayType"`
}

type enrollmentInsureePolicyXml struct {
	PolicyId      string `xml:"PolicyId"`
	InsureeId     string `xml:"InsureeId"`
	EffectiveDate string `xml:"EffectiveDate"`
}

type enrollmentXmlFile struct {
	Families        []enrollmentFamilyXml        `xml:"Families>Family"`
	Insurees        []enrollmentInsureeXml       `xml:"Insurees>Insuree"`
	Policies        []enrollmentPolicyXml        `xml:"Policies>Policy"`
	Premiums        []enrollmentPremiumXml       `xml:"Premiums>Premium"`
	InsureePolicies []enrollmentInsureePolicyXml `xml:"InsureePolicies>InsureePolicy"`
}

func parseDate(value string) time.Time {
	t, err := time.Parse(offlineDateFormat, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDatePtr(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t := parseDate(value)
	return &t
}

func parseIntField(value string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(value))
	return n
}

func parseBoolField(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "true" || v == "1"
}

func getOrCreateInsuree(ctx context.Context, auditUserId int, elm enrollmentInsureeXml, familyId *int) (*models.Insuree, error) {
	existing, err := models.FindValidWhere[models.Insuree](ctx, "chf_id = ?", elm.Chfid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	row := models.Insuree{
		Chfid:      elm.Chfid,
		LastName:   elm.LastName,
		OtherNames: elm.OtherNames,
		Dob:        parseDate(elm.Dob),
		FamilyId:   familyId,
		Head:       parseBoolField(elm.IsHead),
		CardIssued: parseBoolField(elm.CardIssued),
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	if gender := strings.TrimSpace(elm.Gender); gender != "" {
		row.Gender = &gender
	}
	if phone := strings.TrimSpace(elm.Phone); phone != "" {
		row.Phone = &phone
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func getOrCreateFamily(ctx context.Context, auditUserId int, elm enrollmentFamilyXml, headId int) (*models.Family, error) {
	existing, err := models.FindValidWhere[models.Family](ctx, "head_insuree_id = ?", headId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	row := models.Family{
		HeadInsureeId: &headId,
		Poverty:       parseBoolField(elm.Poverty),
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	if locationId := parseIntField(elm.LocationId); locationId != 0 {
		row.LocationId = &locationId
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func getOrCreatePolicy(ctx context.Context, auditUserId int, elm enrollmentPolicyXml, familyId int) (*models.Policy, error) {
	productId := parseIntField(elm.ProdId)
	existing, err := models.FindValidWhere[models.Policy](ctx, "family_id = ? AND product_id = ?", familyId, productId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	value, _ := decimal.NewFromString(strings.TrimSpace(elm.Value))
	row := models.Policy{
		FamilyId:   familyId,
		ProductId:  productId,
		EnrollDate: parseDate(elm.EnrollDate),
		StartDate:  parseDate(elm.StartDate),
		ExpiryDate: parseDatePtr(elm.ExpiryDate),
		Status:     parseIntField(elm.Status),
		Value:      value,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	if officerId := parseIntField(elm.OfficerId); officerId != 0 {
		row.OfficerId = &officerId
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func getOrCreatePremium(ctx context.Context, auditUserId int, elm enrollmentPremiumXml, policyId int) error {
	payDate := parseDate(elm.PayDate)
	existing, err := models.FindValidWhere[models.Premium](ctx, "policy_id = ? AND pay_date = ?", policyId, payDate)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	amount, _ := decimal.NewFromString(strings.TrimSpace(elm.Amount))
	row := models.Premium{
		PolicyId: policyId,
		Amount:   amount,
		Receipt:  strings.TrimSpace(elm.Receipt),
		PayDate:  payDate,
		PayType:  strings.TrimSpace(elm.PayType),
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&row).Error
}

func getOrCreateInsureePolicy(ctx context.Context, auditUserId int, policyId int, insureeId int, effectiveDate *time.Time) error {
	existing, err := models.FindValidWhere[models.InsureePolicy](ctx, "policy_id = ? AND insuree_id = ?", policyId, insureeId)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	row := models.InsureePolicy{
		PolicyId:      policyId,
		InsureeId:     insureeId,
		EffectiveDate: effectiveDate,
		Validity: models.Validity{
			ValidityFrom: time.Now(),
			AuditUserId:  auditUserId,
		},
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(&row).Error
}

func processEnrollmentFile(ctx context.Context, auditUserId int, data []byte) error {
	var doc enrollmentXmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return utils.ErrorInvalidXML
	}

	insureesByFileId := make(map[string]enrollmentInsureeXml, len(doc.Insurees))
	newInsureeIds := make(map[string]int)
	for _, insuree := range doc.Insurees {
		insureesByFileId[insuree.InsureeId] = insuree
	}

	logger := config.GetLogger()
	for _, family := range doc.Families {
		head, ok := insureesByFileId[family.InsureeId]
		if !ok {
			logger.WithFields(logrus.Fields{"familyId": family.FamilyId}).
				Warn("enrollment family without head insuree")
			continue
		}
		dbHead, err := getOrCreateInsuree(ctx, auditUserId, head, nil)
		if err != nil {
			return err
		}
		newInsureeIds[head.InsureeId] = dbHead.ID

		dbFamily, err := getOrCreateFamily(ctx, auditUserId, family, dbHead.ID)
		if err != nil {
			return err
		}
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(dbHead).Update("family_id", dbFamily.ID).Error; err != nil {
			return err
		}

		for _, insuree := range doc.Insurees {
			if insuree.FamilyId != family.FamilyId {
				continue
			}
			if _, done := newInsureeIds[insuree.InsureeId]; done {
				continue
			}
			dbInsuree, err := getOrCreateInsuree(ctx, auditUserId, insuree, &dbFamily.ID)
			if err != nil {
				return err
			}
			newInsureeIds[insuree.InsureeId] = dbInsuree.ID
		}

		for _, policy := range doc.Policies {
			if policy.FamilyId != family.FamilyId {
				continue
			}
			dbPolicy, err := getOrCreatePolicy(ctx, auditUserId, policy, dbFamily.ID)
			if err != nil {
				return err
			}
			for _, premium := range doc.Premiums {
				if premium.PolicyId != policy.PolicyId {
					continue
				}
				if err := getOrCreatePremium(ctx, auditUserId, premium, dbPolicy.ID); err != nil {
					return err
				}
			}
			for _, insureePolicy := range doc.InsureePolicies {
				if insureePolicy.PolicyId != policy.PolicyId {
					continue
				}
				insureeId, ok := newInsureeIds[insureePolicy.InsureeId]
				if !ok {
					logger.WithFields(logrus.Fields{"insureeId": insureePolicy.InsureeId}).
						Warn("insuree policy references unknown insuree")
					continue
				}
				if err := getOrCreateInsureePolicy(ctx, auditUserId, dbPolicy.ID, insureeId, parseDatePtr(insureePolicy.EffectiveDate)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// UploadEnrollments imports an offline enrollment archive: families with
// their insurees, policies, premiums and insuree policies, matched by
// natural keys so replays do not duplicate rows.
func UploadEnrollments(ctx context.Context, auditUserId int, archive []byte) error {
	files, err := readOfflineArchive(archive, ".xml")
	if err != nil {
		return err
	}
	for name, data := range files {
		if err := processEnrollmentFile(ctx, auditUserId, data); err != nil {
			return fmt.Errorf("file '%s': %w", name, err)
		}
	}
	return nil
}

type offlineRenewal struct {
	Policy *struct {
		Chfid       string `json:"CHFID"`
		ProductCode string `json:"ProductCode"`
	} `json:"Policy"`
}

// UploadRenewals imports an offline renewal archive: one JSON document per
// renewed policy. The matching policy is reactivated with a history
// snapshot; renewals without a matching policy are skipped with a warning.
func UploadRenewals(ctx context.Context, auditUserId int, archive []byte) error {
	files, err := readOfflineArchive(archive, ".json")
	if err != nil {
		return err
	}

	logger := config.GetLogger()
	db := config.GetDB()
	for name, data := range files {
		var renewal offlineRenewal
		if err := utils.UnmarshalFromJSON(data, &renewal); err != nil {
			return fmt.Errorf("file '%s': %w", name, utils.ErrorInvalidXML)
		}
		if renewal.Policy == nil {
			logger.WithFields(logrus.Fields{"file": name}).Warn("empty renewal")
			continue
		}

		head, err := models.FindValidWhere[models.Insuree](ctx, "chf_id = ?", renewal.Policy.Chfid)
		if err != nil {
			return err
		}
		product, err := models.FindValidWhere[models.Product](ctx, "code = ?", renewal.Policy.ProductCode)
		if err != nil {
			return err
		}
		var policy *models.Policy
		if head != nil && head.FamilyId != nil && product != nil {
			policy, err = models.FindValidWhere[models.Policy](ctx, "family_id = ? AND product_id = ?", *head.FamilyId, product.ID)
			if err != nil {
				return err
			}
		}
		if policy == nil {
			logger.WithFields(logrus.Fields{"file": name}).Warn("policy renewal without existing policy")
			continue
		}

		if err := models.SaveRegisterSnapshot(ctx, "Policy", policy.ID, policy); err != nil {
			return err
		}
		err = db.WithContext(ctx).Model(policy).Updates(map[string]interface{}{
			"status":        models.PolicyStatusActive,
			"validity_from": time.Now(),
			"audit_user_id": auditUserId,
		}).Error
		if err != nil {
			return err
		}

		now := time.Now()
		err = db.WithContext(ctx).Model(&models.InsureePolicy{}).
			Where("validity_to IS NULL").
			Where("policy_id = ?", policy.ID).
			Update("effective_date", now).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type offlineFeedback struct {
	ClaimId int    `json:"ClaimId"`
	Chfid   string `json:"CHFID"`
	Answers []int  `json:"Answers"`
	Date    string `json:"Date"`
}

func boolFlag(value int) *bool {
	flag := value != 0
	return &flag
}

// UploadFeedbacks imports an offline feedback archive: one JSON document
// per claim feedback, with the five answers in a fixed order.
func UploadFeedbacks(ctx context.Context, auditUserId int, archive []byte) error {
	files, err := readOfflineArchive(archive, ".json")
	if err != nil {
		return err
	}

	logger := config.GetLogger()
	db := config.GetDB()
	for name, data := range files {
		var feedback offlineFeedback
		if err := utils.UnmarshalFromJSON(data, &feedback); err != nil {
			return fmt.Errorf("file '%s': %w", name, utils.ErrorInvalidXML)
		}

		var claim models.Claim
		err = db.WithContext(ctx).
			Joins("JOIN insurees ON insurees.id = claims.insuree_id AND insurees.validity_to IS NULL").
			Where("claims.validity_to IS NULL").
			Where("claims.id = ?", feedback.ClaimId).
			Where("insurees.chf_id = ?", feedback.Chfid).
			First(&claim).Error
		if err != nil {
			logger.WithFields(logrus.Fields{"file": name, "claimId": feedback.ClaimId}).
				Warn("claim feedback without existing claim")
			continue
		}
		if len(feedback.Answers) != 5 {
			logger.WithFields(logrus.Fields{"file": name, "answers": len(feedback.Answers)}).
				Warn("claim feedback with unexpected answers length")
			continue
		}

		existing, err := models.FindValidWhere[models.Feedback](ctx, "claim_id = ?", claim.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		asessment := feedback.Answers[4]
		row := models.Feedback{
			ClaimId:        claim.ID,
			OfficerId:      auditUserId,
			CareRendered:   boolFlag(feedback.Answers[0]),
			PaymentAsked:   boolFlag(feedback.Answers[1]),
			DrugPrescribed: boolFlag(feedback.Answers[2]),
			DrugReceived:   boolFlag(feedback.Answers[3]),
			Asessment:      &asessment,
			FeedbackDate:   parseDatePtr(feedback.Date),
			Validity: models.Validity{
				ValidityFrom: time.Now(),
				AuditUserId:  auditUserId,
			},
		}
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}

		if err := models.SaveRegisterSnapshot(ctx, "Claim", claim.ID, claim); err != nil {
			return err
		}
		err = db.WithContext(ctx).Model(&claim).Updates(map[string]interface{}{
			"feedback_status": models.FeedbackDelivered,
			"validity_from":   time.Now(),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
