package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryWomen  ProductCategory = "women"
	CategoryMen    ProductCategory = "men"
	CategoryUnisex ProductCategory = "unisex"
	CategoryTester ProductCategory = "tester"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryWomen, CategoryMen, CategoryUnisex, CategoryTester:
		return true
	}
	return false
}

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Brand       string          `gorm:"not null;index" json:"brand"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    string          `json:"image_url"`
	Category    ProductCategory `gorm:"type:varchar(20);index" json:"category"`
	Size        string          `gorm:"type:varchar(20)" json:"size"`         // e.g. "50ml"
	Notes       pq.StringArray  `gorm:"type:text[]" json:"notes"`             // top/heart/base fragrance notes
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant is one purchasable size/edition of a product
type ProductVariant struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"index;not null" json:"product_id"`
	SKU           string         `gorm:"uniqueIndex;not null" json:"sku"`
	Label         string         `json:"label"` // e.g. "100ml Eau de Parfum"
	PriceCents    int64          `gorm:"not null" json:"price_cents"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

func (v ProductVariant) InStock() bool {
	return v.StockQuantity > 0
}
