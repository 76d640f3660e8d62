package models

import (
	"tembea/src/types"
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID          uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title       string    `json:"title,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	StartDate   time.Time `json:"start_date,omitempty"`
	EndDate     time.Time `json:"end_date,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// Capacity is reserved at booking-intent time. The counter only moves
	// through the guarded increment in utils.CreateBooking, never a
	// read-then-write.
	MaxCapacity     uint `json:"max_capacity,omitempty"`
	CurrentBookings uint `gorm:"default:0" json:"current_bookings"`

	Bookings []Booking `json:"bookings,omitempty"`
	Reviews  []Review  `json:"reviews,omitempty"`

	types.Timestamps
}
