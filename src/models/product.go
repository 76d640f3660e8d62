package models

import (
	"tembea/src/types"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID   `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name          string      `json:"name,omitempty"`
	Slug          string      `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Price         float64     `json:"price"`
	Category      string      `gorm:"default:'physical'" json:"category,omitempty"`
	Images        types.JSONB `gorm:"type:jsonb" json:"images,omitempty"`
	Destination   *string     `json:"destination,omitempty"`
	IsActive      bool        `gorm:"default:true" json:"is_active"`
	StockQuantity uint        `gorm:"default:0" json:"stock_quantity"`

	types.Timestamps
}
