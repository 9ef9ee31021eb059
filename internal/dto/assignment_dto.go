package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// AssignmentCreateRequest captures new coursework for a class.
type AssignmentCreateRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	ClassID     uuid.UUID  `json:"class_id" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints int        `json:"total_points" validate:"required,gt=0"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft active closed"`
}

// AssignmentUpdateRequest captures partial assignment updates.
type AssignmentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints *int       `json:"total_points" validate:"omitempty,gt=0"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft active closed"`
}

// AssignmentListRequest defines filters for listing assignments.
type AssignmentListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	ClassID  *uuid.UUID
}

// AssignmentResponse serializes an assignment row.
type AssignmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ClassID     uuid.UUID  `json:"class_id"`
	TeacherID   uuid.UUID  `json:"teacher_id"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints int        `json:"total_points"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AssignmentListResponse wraps a paginated assignment listing.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAssignmentResponse converts an assignment model into its DTO.
func NewAssignmentResponse(m models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ClassID:     m.ClassID,
		TeacherID:   m.TeacherID,
		DueDate:     m.DueDate,
		TotalPoints: m.TotalPoints,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
