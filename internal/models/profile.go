package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is an application user. Email is unique process-wide.
//
// Invariant: management, institution_admin and teacher profiles must carry an
// institution reference; super_admin profiles must not. Custom profiles carry
// an explicit permission set drawn from the fixed vocabulary.
type Profile struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	Email         string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string                      `gorm:"size:255;not null" json:"-"`
	Role          Role                        `gorm:"size:32;not null;default:teacher" json:"role"`
	InstitutionID *uuid.UUID                  `gorm:"type:uuid;index" json:"institution_id"`
	Permissions   datatypes.JSONSlice[string] `gorm:"type:json" json:"permissions"`
	Avatar        *string                     `gorm:"size:512" json:"avatar"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PairingValid reports whether the role/institution pairing invariant holds.
func (p Profile) PairingValid() bool {
	if p.Role.RequiresInstitution() {
		return p.InstitutionID != nil
	}
	if p.Role == RoleSuperAdmin {
		return p.InstitutionID == nil
	}
	return true
}
