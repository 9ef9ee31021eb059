package dto

import (
	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/policy"
)

// LoginRequest carries the opaque credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// ActorResponse serializes the resolved authorization context of a session.
type ActorResponse struct {
	ID            uuid.UUID  `json:"id"`
	Role          string     `json:"role"`
	InstitutionID *uuid.UUID `json:"institution_id,omitempty"`
	Permissions   []string   `json:"permissions,omitempty"`
	TeacherID     *uuid.UUID `json:"teacher_id,omitempty"`
}

// LoginResponse returns the session token together with the actor context.
type LoginResponse struct {
	Token string        `json:"token"`
	Actor ActorResponse `json:"actor"`
}

// NewActorResponse converts a policy actor into its DTO.
func NewActorResponse(actor policy.Actor) ActorResponse {
	permissions := make([]string, 0, len(actor.Permissions))
	for _, p := range actor.Permissions {
		permissions = append(permissions, string(p))
	}

	return ActorResponse{
		ID:            actor.ID,
		Role:          string(actor.Role),
		InstitutionID: actor.InstitutionID,
		Permissions:   permissions,
		TeacherID:     actor.TeacherID,
	}
}
