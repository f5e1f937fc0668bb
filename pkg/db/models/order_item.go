package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one purchased line of an order. PriceCents is the product
// price frozen at purchase time; it must never be re-read from the live
// product. LicenseKey is globally unique and never reissued, even after a
// cancellation or refund.
type OrderItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity    int       `gorm:"column:quantity;not null;default:1"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	LicenseKey  string    `gorm:"column:license_key;uniqueIndex;not null"`
	DownloadURL *string   `gorm:"column:download_url"`
	Product     *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
