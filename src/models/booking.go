package models

import (
	"tembea/src/types"

	"github.com/google/uuid"
)

// Booking is a ledger entry for a trip reservation. status and
// payment_status move together: confirmed implies completed payment,
// cancelled implies failed or cancelled payment. Rows are never deleted.
type Booking struct {
	ID               uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	TripID           uuid.UUID           `gorm:"type:uuid;not null" json:"trip_id"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null" json:"user_id"`
	BookingReference string              `gorm:"index" json:"booking_reference"`
	TotalAmount      float64             `json:"total_amount"`
	PaymentMethod    types.PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus    types.PaymentStatus `gorm:"default:'pending'" json:"payment_status"`
	Status           types.BookingStatus `gorm:"default:'pending'" json:"status"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	SpecialRequests  *string             `json:"special_requests,omitempty"`

	Trip *Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	types.Timestamps
}
