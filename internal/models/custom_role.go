package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomRole is a named permission bundle. When InstitutionID is nil the role
// is global; otherwise it is scoped to one institution.
type CustomRole struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	Description   *string                     `gorm:"type:text" json:"description"`
	Permissions   datatypes.JSONSlice[string] `gorm:"type:json" json:"permissions"`
	InstitutionID *uuid.UUID                  `gorm:"type:uuid;index" json:"institution_id"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (r *CustomRole) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
