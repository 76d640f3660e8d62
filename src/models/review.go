package models

import (
	"tembea/src/types"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	TripID     uuid.UUID `gorm:"type:uuid;not null" json:"trip_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	IsApproved bool      `gorm:"default:false" json:"is_approved"`

	Trip *Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	types.Timestamps
}
