package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// AuditLogFilter narrows audit trail queries.
type AuditLogFilter struct {
	Limit     int
	ActorID   *uuid.UUID
	Action    string
	TableName string
	// ActorInstitutionID restricts the trail to entries produced by actors
	// of one institution, via their profiles.
	ActorInstitutionID *uuid.UUID
}

// AuditLogRepository persists the append-only audit trail. There is no
// update or delete surface on purpose.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// ListRecent returns the most recent entries, newest first.
	ListRecent(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) ListRecent(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TableName != "" {
		query = query.Where("table_name = ?", filter.TableName)
	}
	if filter.ActorInstitutionID != nil {
		actorIDs := r.db.Model(&models.Profile{}).Select("id").Where("institution_id = ?", *filter.ActorInstitutionID)
		query = query.Where("actor_id IN (?)", actorIDs)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
