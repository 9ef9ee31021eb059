package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// TeacherCreateRequest captures a new teacher record.
type TeacherCreateRequest struct {
	Name          string    `json:"name" validate:"required,min=2,max=255"`
	Email         string    `json:"email" validate:"required,email"`
	InstitutionID uuid.UUID `json:"institution_id" validate:"required"`
	Subjects      []string  `json:"subjects" validate:"omitempty,dive,min=1"`
	Status        *string   `json:"status" validate:"omitempty,oneof=active on_leave"`
}

// TeacherUpdateRequest captures partial teacher updates.
type TeacherUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Subjects []string `json:"subjects" validate:"omitempty,dive,min=1"`
	Status   *string  `json:"status" validate:"omitempty,oneof=active on_leave"`
}

// TeacherListRequest defines filters for listing teachers.
type TeacherListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// TeacherResponse serializes a teacher row.
type TeacherResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	InstitutionID uuid.UUID  `json:"institution_id"`
	ProfileID     *uuid.UUID `json:"profile_id,omitempty"`
	Subjects      []string   `json:"subjects"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TeacherListResponse wraps a paginated teacher listing.
type TeacherListResponse struct {
	Items      []TeacherResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewTeacherResponse converts a teacher model into its DTO.
func NewTeacherResponse(m models.Teacher) TeacherResponse {
	return TeacherResponse{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		InstitutionID: m.InstitutionID,
		ProfileID:     m.ProfileID,
		Subjects:      []string(m.Subjects),
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
