package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// AuditListRequest defines filters for reading the audit trail.
type AuditListRequest struct {
	Limit     int
	Action    string
	TableName string
}

// AuditLogResponse serializes one audit trail entry.
type AuditLogResponse struct {
	ID        uuid.UUID              `json:"id"`
	ActorID   *uuid.UUID             `json:"actor_id,omitempty"`
	ActorRole string                 `json:"actor_role"`
	Action    string                 `json:"action"`
	TableName string                 `json:"table_name"`
	RecordID  *uuid.UUID             `json:"record_id,omitempty"`
	OldValues map[string]interface{} `json:"old_values,omitempty"`
	NewValues map[string]interface{} `json:"new_values,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// AuditListResponse wraps a newest-first slice of audit entries.
type AuditListResponse struct {
	Items []AuditLogResponse `json:"items"`
}

// NewAuditLogResponse converts an audit model into its DTO.
func NewAuditLogResponse(m models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        m.ID,
		ActorID:   m.ActorID,
		ActorRole: m.ActorRole,
		Action:    m.Action,
		TableName: m.TableName,
		RecordID:  m.RecordID,
		OldValues: map[string]interface{}(m.OldValues),
		NewValues: map[string]interface{}(m.NewValues),
		CreatedAt: m.CreatedAt,
	}
}
