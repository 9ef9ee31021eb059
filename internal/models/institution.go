package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstitutionStatus tracks the lifecycle state of an institution.
type InstitutionStatus string

const (
	InstitutionActive    InstitutionStatus = "active"
	InstitutionPending   InstitutionStatus = "pending"
	InstitutionSuspended InstitutionStatus = "suspended"
)

// Institution is the tenant boundary that owns teachers, students, classes,
// scoped custom roles and non-super-admin profiles.
type Institution struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Address      *string           `gorm:"size:512" json:"address"`
	ContactEmail *string           `gorm:"size:255" json:"contact_email"`
	ContactPhone *string           `gorm:"size:64" json:"contact_phone"`
	Status       InstitutionStatus `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (i *Institution) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
