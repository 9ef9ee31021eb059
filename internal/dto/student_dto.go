package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// StudentCreateRequest captures a new student record.
type StudentCreateRequest struct {
	Name          string    `json:"name" validate:"required,min=2,max=255"`
	Email         string    `json:"email" validate:"required,email"`
	Grade         string    `json:"grade" validate:"required"`
	InstitutionID uuid.UUID `json:"institution_id" validate:"required"`
	Status        *string   `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StudentUpdateRequest captures partial student updates.
type StudentUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Grade  *string `json:"grade" validate:"omitempty"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Page     int
	PageSize int
	Search   string
	Grade    string
	Status   string
}

// StudentResponse serializes a student row.
type StudentResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Grade         string     `json:"grade"`
	InstitutionID uuid.UUID  `json:"institution_id"`
	ProfileID     *uuid.UUID `json:"profile_id,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into its DTO.
func NewStudentResponse(m models.Student) StudentResponse {
	return StudentResponse{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Grade:         m.Grade,
		InstitutionID: m.InstitutionID,
		ProfileID:     m.ProfileID,
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
