package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// ProfileCreateRequest captures a new user profile.
type ProfileCreateRequest struct {
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	Role          string     `json:"role" validate:"required,oneof=super_admin management institution_admin teacher custom"`
	InstitutionID *uuid.UUID `json:"institution_id"`
	Permissions   []string   `json:"permissions" validate:"omitempty,dive,oneof=manage_users manage_classes manage_assignments view_reports manage_grades send_notifications"`
}

// ProfileUpdateRequest captures partial profile updates. Role changes run
// through the dedicated role assignment endpoint, not here.
type ProfileUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ProfileListRequest defines filters for listing profiles.
type ProfileListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

// AssignRoleRequest changes a profile's role and institution binding.
type AssignRoleRequest struct {
	Role          string     `json:"role" validate:"required,oneof=super_admin management institution_admin teacher custom"`
	InstitutionID *uuid.UUID `json:"institution_id"`
	Permissions   []string   `json:"permissions" validate:"omitempty,dive,oneof=manage_users manage_classes manage_assignments view_reports manage_grades send_notifications"`
}

// ProfileResponse serializes a profile row. The password hash never leaves
// the service layer.
type ProfileResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
	Permissions   []string   `json:"permissions,omitempty"`
	Avatar        *string    `json:"avatar,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProfileListResponse wraps a paginated profile listing.
type ProfileListResponse struct {
	Items      []ProfileResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewProfileResponse converts a profile model into its DTO.
func NewProfileResponse(m models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Role:          string(m.Role),
		InstitutionID: m.InstitutionID,
		Permissions:   []string(m.Permissions),
		Avatar:        m.Avatar,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
