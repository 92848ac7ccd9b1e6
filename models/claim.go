package models

import "time"

// Claim feedback statuses.
const (
	FeedbackIdle        = 1
	FeedbackNotSelected = 2
	FeedbackSelected    = 4
	FeedbackDelivered   = 8
	FeedbackBypassed    = 16
)

type Claim struct {
	ID               int        `gorm:"primary_key" json:"id"`
	Code             string     `gorm:"size:20;not null;index" json:"code"`
	InsureeId        int        `gorm:"not null;index" json:"insuree_id"`
	HealthFacilityId int        `gorm:"not null;index" json:"health_facility_id"`
	DateClaimed      time.Time  `gorm:"not null" json:"date_claimed"`
	DateFrom         time.Time  `gorm:"not null" json:"date_from"`
	DateTo           *time.Time `json:"date_to"`
	Status           int        `gorm:"not null" json:"status"`
	FeedbackStatus   int        `gorm:"not null;default:1" json:"feedback_status"`
	Validity
}

func (Claim) TableName() string {
	return "claims"
}

type Feedback struct {
	ID             int        `gorm:"primary_key" json:"id"`
	ClaimId        int        `gorm:"not null;uniqueIndex" json:"claim_id"`
	OfficerId      int        `gorm:"not null" json:"officer_id"`
	CareRendered   *bool      `json:"care_rendered"`
	PaymentAsked   *bool      `json:"payment_asked"`
	DrugPrescribed *bool      `json:"drug_prescribed"`
	DrugReceived   *bool      `json:"drug_received"`
	Asessment      *int       `json:"asessment"`
	FeedbackDate   *time.Time `json:"feedback_date"`
	Validity
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// FeedbackPrompt marks a claim selected for officer feedback collection.
// Prompts stay open until a Feedback row arrives for the claim.
type FeedbackPrompt struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	ClaimId            int       `gorm:"not null;index" json:"claim_id"`
	Claim              *Claim    `gorm:"foreignKey:ClaimId" json:"claim,omitempty"`
	OfficerId          int       `gorm:"not null;index" json:"officer_id"`
	FeedbackPromptDate time.Time `gorm:"not null" json:"feedback_prompt_date"`
	Validity
}

func (FeedbackPrompt) TableName() string {
	return "feedback_prompts"
}
