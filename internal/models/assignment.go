package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentStatus tracks the assignment lifecycle.
type AssignmentStatus string

const (
	AssignmentDraft  AssignmentStatus = "draft"
	AssignmentActive AssignmentStatus = "active"
	AssignmentClosed AssignmentStatus = "closed"
)

// Assignment is coursework issued for a class.
//
// Invariant: TeacherID must match the assigned teacher of the referenced class.
type Assignment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description *string          `gorm:"type:text" json:"description"`
	ClassID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"class_id"`
	TeacherID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"teacher_id"`
	DueDate     *time.Time       `json:"due_date"`
	TotalPoints int              `gorm:"not null;default:100" json:"total_points"`
	Status      AssignmentStatus `gorm:"size:32;not null;default:draft" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (a *Assignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
