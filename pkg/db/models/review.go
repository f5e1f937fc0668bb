package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a buyer's rating of a product. IsVerifiedPurchase is stamped
// once at creation from the order ledger and never recomputed.
type Review struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	Rating             int       `gorm:"column:rating;not null"`
	Title              *string   `gorm:"column:title"`
	Comment            *string   `gorm:"column:comment"`
	HelpfulCount       int64     `gorm:"column:helpful_count;not null;default:0"`
	SellerResponse     *string   `gorm:"column:seller_response"`
	IsVerifiedPurchase bool      `gorm:"column:is_verified_purchase;not null;default:false"`
	User               *User     `gorm:"foreignKey:UserID"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
