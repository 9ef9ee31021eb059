package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentStatus tracks student enrollment state.
type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

// GradeLevels enumerates the twelve recognised grade levels.
var GradeLevels = buildGradeLevels()

func buildGradeLevels() []string {
	grades := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		grades = append(grades, fmt.Sprintf("grade_%d", i))
	}
	return grades
}

// ValidGrade reports whether the value is one of the twelve grade levels.
func ValidGrade(grade string) bool {
	for _, known := range GradeLevels {
		if grade == known {
			return true
		}
	}
	return false
}

// Student is a learner record owned by exactly one institution.
type Student struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"size:255;not null" json:"name"`
	Email         string        `gorm:"size:255;not null" json:"email"`
	Grade         string        `gorm:"size:16;not null" json:"grade"`
	InstitutionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"institution_id"`
	ProfileID     *uuid.UUID    `gorm:"type:uuid;index" json:"profile_id"`
	Status        StudentStatus `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (s *Student) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
