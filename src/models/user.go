package models

import (
	"tembea/src/types"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"full_name,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	EmergencyPhone   string    `json:"emergency_phone,omitempty"`
	IsAdmin          bool      `gorm:"default:false" json:"is_admin"`

	types.Timestamps
}
