package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// CustomRoleCreateRequest captures a new permission bundle.
type CustomRoleCreateRequest struct {
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	Description   *string    `json:"description" validate:"omitempty,max=2000"`
	Permissions   []string   `json:"permissions" validate:"required,min=1,dive,oneof=manage_users manage_classes manage_assignments view_reports manage_grades send_notifications"`
	InstitutionID *uuid.UUID `json:"institution_id"`
}

// CustomRoleUpdateRequest captures partial permission bundle updates.
type CustomRoleUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Permissions []string `json:"permissions" validate:"omitempty,min=1,dive,oneof=manage_users manage_classes manage_assignments view_reports manage_grades send_notifications"`
}

// CustomRoleListRequest defines filters for listing custom roles.
type CustomRoleListRequest struct {
	Page     int
	PageSize int
	Search   string
}

// CustomRoleResponse serializes a custom role row.
type CustomRoleResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	Permissions   []string   `json:"permissions"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CustomRoleListResponse wraps a paginated custom role listing.
type CustomRoleListResponse struct {
	Items      []CustomRoleResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewCustomRoleResponse converts a custom role model into its DTO.
func NewCustomRoleResponse(m models.CustomRole) CustomRoleResponse {
	return CustomRoleResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Permissions:   []string(m.Permissions),
		InstitutionID: m.InstitutionID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
