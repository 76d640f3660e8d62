package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Environment string

const (
	Production Environment = "production"
	Test       Environment = "test"
	Local      Environment = "local"
)

type BookingStatus string
type OrderStatus string
type PaymentStatus string
type TransactionStatus string
type PaymentMethod string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

const (
	ORDER_PENDING    OrderStatus = "pending"
	ORDER_PROCESSING OrderStatus = "processing"
	ORDER_SHIPPED    OrderStatus = "shipped"
	ORDER_DELIVERED  OrderStatus = "delivered"
	ORDER_CANCELED   OrderStatus = "cancelled"
)

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_FAILED    PaymentStatus = "failed"
	PAYMENT_CANCELED  PaymentStatus = "cancelled"
)

const (
	TRANSACTION_PENDING   TransactionStatus = "pending"
	TRANSACTION_COMPLETED TransactionStatus = "completed"
	TRANSACTION_FAILED    TransactionStatus = "failed"
)

const (
	PAYMENT_METHOD_MPESA PaymentMethod = "mpesa"
	PAYMENT_METHOD_CARD  PaymentMethod = "card"
)

// Terminal reports whether a transaction status can no longer change.
// Callback replays for terminal transactions are acknowledged without
// touching the ledger again.
func (s TransactionStatus) Terminal() bool {
	return s == TRANSACTION_COMPLETED || s == TRANSACTION_FAILED
}

type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type RegisterRequestBody struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequestBody struct {
	FullName         string `json:"full_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	EmergencyPhone   string `json:"emergency_phone,omitempty"`
}

type CreateBookingRequestBody struct {
	TripID           string        `json:"trip_id" binding:"required,uuid"`
	FullName         string        `json:"full_name" binding:"required"`
	Email            string        `json:"email" binding:"required,email"`
	Phone            string        `json:"phone" binding:"required"`
	EmergencyContact string        `json:"emergency_contact" binding:"required"`
	EmergencyPhone   string        `json:"emergency_phone" binding:"required"`
	PaymentMethod    PaymentMethod `json:"payment_method" binding:"required,oneof=mpesa card"`
	SpecialRequests  string        `json:"special_requests,omitempty"`
}

type OrderItemInput struct {
	ProductID string `json:"product" binding:"required,uuid"`
	Quantity  uint   `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequestBody struct {
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   PaymentMethod    `json:"payment_method" binding:"required,oneof=mpesa card"`
	ShippingAddress JSONB            `json:"shipping_address,omitempty"`
}

// Payment initiation bodies carry exactly one of booking_id/order_id;
// the handlers reject anything else.
type CardPaymentRequestBody struct {
	BookingID string `json:"booking_id,omitempty" binding:"omitempty,uuid"`
	OrderID   string `json:"order_id,omitempty" binding:"omitempty,uuid"`
	Currency  string `json:"currency,omitempty"`
}

type MpesaPaymentRequestBody struct {
	PhoneNumber string `json:"phone_number" binding:"required,kenyanphone"`
	BookingID   string `json:"booking_id,omitempty" binding:"omitempty,uuid"`
	OrderID     string `json:"order_id,omitempty" binding:"omitempty,uuid"`
}

type ManualPaymentRequestBody struct {
	BookingID       string `json:"booking_id,omitempty" binding:"omitempty,uuid"`
	OrderID         string `json:"order_id,omitempty" binding:"omitempty,uuid"`
	TransactionCode string `json:"transaction_code" binding:"required,min=8"`
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,kenyanphone"`
}

type ConfirmManualPaymentRequestBody struct {
	Approve bool `json:"approve"`
}

type CreateTripRequestBody struct {
	Title       string  `json:"title" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	MaxCapacity uint    `json:"max_capacity" binding:"required,min=1"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type CreateProductRequestBody struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	Category      string   `json:"category" binding:"required,oneof=digital physical"`
	StockQuantity uint     `json:"stock_quantity"`
	Images        []string `json:"images,omitempty"`
	Destination   string   `json:"destination,omitempty"`
}

type CreateReviewRequestBody struct {
	TripID  string `json:"trip_id" binding:"required,uuid"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// StkCallbackRequestBody mirrors the Daraja callback payload. The
// metadata items arrive as an unordered name/value list; optional items
// may be missing entirely.
type StkCallbackRequestBody struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string               `json:"MerchantRequestID"`
	CheckoutRequestID string               `json:"CheckoutRequestID"`
	ResultCode        int                  `json:"ResultCode"`
	ResultDesc        string               `json:"ResultDesc"`
	CallbackMetadata  *StkCallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type StkCallbackMetadata struct {
	Item []StkCallbackItem `json:"Item"`
}

type StkCallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}
