package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActionAccessDenied labels audit entries recorded for denied attempts.
const ActionAccessDenied = "access_denied"

// AuditLog is an append-only record of a state change or access decision.
// Entries are never mutated or deleted by application logic.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID   *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id"`
	ActorRole string            `gorm:"size:32" json:"actor_role"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	TableName string            `gorm:"size:64;not null" json:"table_name"`
	RecordID  *uuid.UUID        `gorm:"type:uuid;index" json:"record_id"`
	OldValues datatypes.JSONMap `gorm:"type:json" json:"old_values"`
	NewValues datatypes.JSONMap `gorm:"type:json" json:"new_values"`
	CreatedAt time.Time         `json:"created_at"`
}

// BeforeCreate assigns an identifier when none was provided.
func (l *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
