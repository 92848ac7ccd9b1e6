package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PolicyStatusIdle      = 1
	PolicyStatusActive    = 2
	PolicyStatusSuspended = 4
	PolicyStatusExpired   = 8
)

// Product is maintained elsewhere; renewals resolve it by code.
type Product struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Code string `gorm:"size:8;not null;index" json:"code"`
	Name string `gorm:"size:100;not null" json:"name"`
	Validity
}

func (Product) TableName() string {
	return "products"
}

func (p Product) GetId() int {
	return p.ID
}

func (p Product) GetCode() string {
	return p.Code
}

type Policy struct {
	ID         int             `gorm:"primary_key" json:"id"`
	FamilyId   int             `gorm:"not null;index" json:"family_id"`
	ProductId  int             `gorm:"not null" json:"product_id"`
	OfficerId  *int            `gorm:"index" json:"officer_id"`
	EnrollDate time.Time       `gorm:"not null" json:"enroll_date"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	ExpiryDate *time.Time      `json:"expiry_date"`
	Status     int             `gorm:"not null" json:"status"`
	Value      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"value"`
	Validity
}

func (Policy) TableName() string {
	return "policies"
}

type Premium struct {
	ID       int             `gorm:"primary_key" json:"id"`
	PolicyId int             `gorm:"not null;index" json:"policy_id"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Receipt  string          `gorm:"size:50;not null" json:"receipt"`
	PayDate  time.Time       `gorm:"not null" json:"pay_date"`
	PayType  string          `gorm:"size:1;not null" json:"pay_type"`
	Validity
}

func (Premium) TableName() string {
	return "premiums"
}

type InsureePolicy struct {
	ID            int        `gorm:"primary_key" json:"id"`
	InsureeId     int        `gorm:"not null;index" json:"insuree_id"`
	PolicyId      int        `gorm:"not null;index" json:"policy_id"`
	EffectiveDate *time.Time `json:"effective_date"`
	Validity
}

func (InsureePolicy) TableName() string {
	return "insuree_policies"
}

// PolicyRenewal is the prompt sent to an enrollment officer when one of
// their policies nears expiry. Pending prompts have ResponseDate unset.
type PolicyRenewal struct {
	ID           int        `gorm:"primary_key" json:"id"`
	PolicyId     int        `gorm:"not null;index" json:"policy_id"`
	Policy       *Policy    `gorm:"foreignKey:PolicyId" json:"policy,omitempty"`
	InsureeId    int        `gorm:"not null" json:"insuree_id"`
	ProductId    int        `gorm:"not null" json:"product_id"`
	OfficerId    int        `gorm:"not null;index" json:"officer_id"`
	RenewalDate  time.Time  `gorm:"not null" json:"renewal_date"`
	ResponseDate *time.Time `json:"response_date"`
	Validity
}

func (PolicyRenewal) TableName() string {
	return "policy_renewals"
}
