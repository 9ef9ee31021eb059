package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassStatus tracks whether a class is running.
type ClassStatus string

const (
	ClassActive   ClassStatus = "active"
	ClassInactive ClassStatus = "inactive"
)

// Class is a scheduled group of students owned by one institution.
//
// Invariant: TeacherID, when set, must reference a teacher of the same
// institution as the class.
type Class struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string      `gorm:"size:255;not null" json:"name"`
	InstitutionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"institution_id"`
	TeacherID     *uuid.UUID  `gorm:"type:uuid;index" json:"teacher_id"`
	Schedule      *string     `gorm:"size:255" json:"schedule"`
	Room          *string     `gorm:"size:64" json:"room"`
	MaxStudents   int         `gorm:"not null;default:30" json:"max_students"`
	Status        ClassStatus `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (c *Class) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
