package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// ClassCreateRequest captures a new class.
type ClassCreateRequest struct {
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	InstitutionID uuid.UUID  `json:"institution_id" validate:"required"`
	TeacherID     *uuid.UUID `json:"teacher_id"`
	Schedule      *string    `json:"schedule" validate:"omitempty,max=255"`
	Room          *string    `json:"room" validate:"omitempty,max=64"`
	MaxStudents   int        `json:"max_students" validate:"required,gt=0"`
	Status        *string    `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ClassUpdateRequest captures partial class updates.
type ClassUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=255"`
	TeacherID   *uuid.UUID `json:"teacher_id"`
	Schedule    *string    `json:"schedule" validate:"omitempty,max=255"`
	Room        *string    `json:"room" validate:"omitempty,max=64"`
	MaxStudents *int       `json:"max_students" validate:"omitempty,gt=0"`
	Status      *string    `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ClassListRequest defines filters for listing classes.
type ClassListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// ClassResponse serializes a class row.
type ClassResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	InstitutionID uuid.UUID  `json:"institution_id"`
	TeacherID     *uuid.UUID `json:"teacher_id,omitempty"`
	Schedule      *string    `json:"schedule"`
	Room          *string    `json:"room"`
	MaxStudents   int        `json:"max_students"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ClassListResponse wraps a paginated class listing.
type ClassListResponse struct {
	Items      []ClassResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewClassResponse converts a class model into its DTO.
func NewClassResponse(m models.Class) ClassResponse {
	return ClassResponse{
		ID:            m.ID,
		Name:          m.Name,
		InstitutionID: m.InstitutionID,
		TeacherID:     m.TeacherID,
		Schedule:      m.Schedule,
		Room:          m.Room,
		MaxStudents:   m.MaxStudents,
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
