package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// InstitutionCreateRequest captures a new institution.
type InstitutionCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Address      *string `json:"address" validate:"omitempty,max=512"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=64"`
	Status       *string `json:"status" validate:"omitempty,oneof=active pending suspended"`
}

// InstitutionUpdateRequest captures partial institution updates.
type InstitutionUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=255"`
	Address      *string `json:"address" validate:"omitempty,max=512"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=64"`
	Status       *string `json:"status" validate:"omitempty,oneof=active pending suspended"`
}

// InstitutionListRequest defines filters for listing institutions.
type InstitutionListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// InstitutionResponse serializes an institution row.
type InstitutionResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Address      *string   `json:"address"`
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InstitutionListResponse wraps a paginated institution listing.
type InstitutionListResponse struct {
	Items      []InstitutionResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// InstitutionStatsResponse aggregates row counts for one institution.
type InstitutionStatsResponse struct {
	InstitutionID uuid.UUID `json:"institution_id"`
	Teachers      int64     `json:"teachers"`
	Students      int64     `json:"students"`
	Classes       int64     `json:"classes"`
	Profiles      int64     `json:"profiles"`
	CustomRoles   int64     `json:"custom_roles"`
}

// NewInstitutionResponse converts an institution model into its DTO.
func NewInstitutionResponse(m models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:           m.ID,
		Name:         m.Name,
		Address:      m.Address,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
