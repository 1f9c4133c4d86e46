package model

import (
	"time"

	"gorm.io/gorm"
)

// BundleOffer is an admin-defined "buy N, save X%" offer
type BundleOffer struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Slug             string         `gorm:"uniqueIndex;not null" json:"slug" yaml:"slug"`
	Name             string         `gorm:"not null" json:"name" yaml:"name"`
	DiscountPercent  float64        `gorm:"not null" json:"discount_percent" yaml:"discount_percent"`
	QuantityRequired int            `gorm:"not null" json:"quantity_required" yaml:"quantity_required"`
	Active           bool           `gorm:"default:true" json:"active" yaml:"active"`
	CreatedAt        time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time      `json:"updated_at" yaml:"-"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-" yaml:"-"`
}

func (BundleOffer) TableName() string {
	return "bundle_offers"
}
