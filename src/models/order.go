package models

import (
	"tembea/src/types"

	"github.com/google/uuid"
)

// Order is a cart checkout. Items are created atomically with the order
// and are immutable afterwards; total_amount always equals the sum of
// the item totals.
type Order struct {
	ID               uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null" json:"user_id"`
	OrderReference   string              `gorm:"index" json:"order_reference"`
	TotalAmount      float64             `json:"total_amount"`
	PaymentMethod    types.PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus    types.PaymentStatus `gorm:"default:'pending'" json:"payment_status"`
	Status           types.OrderStatus   `gorm:"default:'pending'" json:"status"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	ShippingAddress  *types.JSONB        `gorm:"type:jsonb" json:"shipping_address,omitempty"`

	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `json:"items,omitempty"`

	types.Timestamps
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  uint      `json:"quantity"`
	// UnitPrice is the catalog price snapshotted at purchase time.
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	types.Timestamps
}
