package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/devhaven/marketplace-backend/pkg/enums"
)

// Product is a seller's catalog listing. Checkout reads PriceCents and
// Status at purchase time and snapshots them onto order items; nothing in
// the order path ever writes the price back.
type Product struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SellerID           uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	CategoryID         *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	Name               string              `gorm:"column:name;not null"`
	Slug               string              `gorm:"column:slug;uniqueIndex;not null"`
	Description        *string             `gorm:"column:description"`
	ShortDescription   *string             `gorm:"column:short_description"`
	PriceCents         int64               `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int64              `gorm:"column:original_price_cents"`
	ProductType        enums.ProductType   `gorm:"column:product_type;type:text;not null;default:'software'"`
	LicenseType        enums.LicenseType   `gorm:"column:license_type;type:text;not null;default:'perpetual'"`
	Status             enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	ImageURL           *string             `gorm:"column:image_url"`
	Images             pq.StringArray      `gorm:"column:images;type:text[]"`
	Version            *string             `gorm:"column:version"`
	DemoURL            *string             `gorm:"column:demo_url"`
	DocumentationURL   *string             `gorm:"column:documentation_url"`
	Features           pq.StringArray      `gorm:"column:features;type:text[]"`
	Requirements       *string             `gorm:"column:requirements"`
	IsFeatured         bool                `gorm:"column:is_featured;not null;default:false"`
	DownloadCount      int64               `gorm:"column:download_count;not null;default:0"`
	ViewCount          int64               `gorm:"column:view_count;not null;default:0"`
	Seller             *User               `gorm:"foreignKey:SellerID"`
	Category           *Category           `gorm:"foreignKey:CategoryID"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
