package models

import (
	"tembea/src/types"
	"time"

	"github.com/google/uuid"
)

// MpesaTransaction tracks one STK push attempt. It is created before the
// initiation call returns, so the asynchronous callback always has a row
// to correlate against, and it is finalized at most once.
type MpesaTransaction struct {
	ID                uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	CheckoutRequestID string    `gorm:"uniqueIndex;not null" json:"checkout_request_id"`
	MerchantRequestID string    `json:"merchant_request_id"`
	PhoneNumber       string    `json:"phone_number"`
	Amount            float64   `json:"amount"`

	// Exactly one of booking_id/order_id is set.
	BookingID *uuid.UUID `gorm:"type:uuid" json:"booking_id,omitempty"`
	OrderID   *uuid.UUID `gorm:"type:uuid" json:"order_id,omitempty"`

	Status             types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	MpesaReceiptNumber *string                 `json:"mpesa_receipt_number,omitempty"`
	ResultDesc         *string                 `json:"result_desc,omitempty"`
	TransactionDate    *time.Time              `json:"transaction_date,omitempty"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
	Order   *Order   `gorm:"foreignKey:OrderID" json:"-"`

	types.Timestamps
}
