package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // handed off to payment
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order records what a cart session handed to the payment boundary.
// Amounts are integer cents.
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	SessionID           string         `gorm:"type:varchar(64);index;not null" json:"session_id"`
	UserID              *uint          `gorm:"index" json:"user_id,omitempty"`
	Status              OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Currency            string         `gorm:"type:varchar(3);not null" json:"currency"`
	SubtotalCents       int64          `gorm:"not null" json:"subtotal_cents"`
	DiscountCents       int64          `gorm:"not null;default:0" json:"discount_cents"`
	TotalCents          int64          `gorm:"not null" json:"total_cents"`
	BundleID            string         `gorm:"type:varchar(64)" json:"bundle_id,omitempty"`
	BundlePercent       float64        `json:"bundle_percent,omitempty"`
	ItemCount           int            `gorm:"not null" json:"item_count"`
	LoyaltyPointsEarned int64          `gorm:"default:0" json:"loyalty_points_earned"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots a line item at handoff time
type OrderItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	ProductID      string    `gorm:"type:varchar(64);not null" json:"product_id"`
	VariantID      string    `gorm:"type:varchar(64);not null" json:"variant_id"`
	Brand          string    `json:"brand"`
	Name           string    `gorm:"not null" json:"name"`
	Size           string    `json:"size"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	LineTotalCents int64     `gorm:"not null" json:"line_total_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
