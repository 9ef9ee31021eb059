package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeacherStatus tracks teacher availability.
type TeacherStatus string

const (
	TeacherActive  TeacherStatus = "active"
	TeacherOnLeave TeacherStatus = "on_leave"
)

// Teacher is a staff record owned by exactly one institution. ProfileID links
// the record to the login profile of the same person, when one exists.
type Teacher struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	Email         string                      `gorm:"size:255;not null" json:"email"`
	InstitutionID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"institution_id"`
	ProfileID     *uuid.UUID                  `gorm:"type:uuid;index" json:"profile_id"`
	Subjects      datatypes.JSONSlice[string] `gorm:"type:json" json:"subjects"`
	Status        TeacherStatus               `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (t *Teacher) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
