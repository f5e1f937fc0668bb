package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/devhaven/marketplace-backend/pkg/enums"
)

// Order is the immutable ledger record produced by checkout. Billing fields
// are copied verbatim from the checkout request so later profile edits never
// alter historical orders. Only status and payment status may change after
// creation.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID        uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	OrderNumber    string              `gorm:"column:order_number;uniqueIndex;not null"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents  int64               `gorm:"column:subtotal_cents;not null"`
	TaxCents       int64               `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents  int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents     int64               `gorm:"column:total_cents;not null"`
	PaymentMethod  *string             `gorm:"column:payment_method"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	BillingName    string              `gorm:"column:billing_name;not null"`
	BillingEmail   string              `gorm:"column:billing_email;not null"`
	BillingAddress *string             `gorm:"column:billing_address"`
	Notes          *string             `gorm:"column:notes"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
