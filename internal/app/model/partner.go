package model

import (
	"time"

	"gorm.io/gorm"
)

type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusApproved PartnerStatus = "approved"
)

// Partner is an affiliate applying for referral commission payouts
type Partner struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex:idx_partners_user_id;not null" json:"user_id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"not null" json:"email"`
	IBAN         string         `gorm:"type:varchar(34);not null" json:"-"` // normalized, never serialized
	IBANMasked   string         `gorm:"type:varchar(34)" json:"iban"`
	ReferralCode string         `gorm:"uniqueIndex;type:varchar(16);not null" json:"referral_code"`
	Status       PartnerStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ApprovedAt   *time.Time     `json:"approved_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Partner) TableName() string {
	return "partners"
}
