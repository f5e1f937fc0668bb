package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/devhaven/marketplace-backend/pkg/enums"
)

// User is a marketplace account. Sellers are users with the seller role;
// their listings hang off Product.SellerID.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email              string         `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	Name               string         `gorm:"column:name;not null"`
	Role               enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	CompanyName        *string        `gorm:"column:company_name"`
	CompanyDescription *string        `gorm:"column:company_description"`
	AvatarURL          *string        `gorm:"column:avatar_url"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
