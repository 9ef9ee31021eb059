package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// CustomRoleFilter narrows custom role listings.
type CustomRoleFilter struct {
	Page     int
	PageSize int
	Search   string
	// InstitutionID scopes the listing; global roles are included alongside
	// the institution's own when IncludeGlobal is set.
	InstitutionID *uuid.UUID
	IncludeGlobal bool
}

// CustomRoleRepository provides access to named permission bundles.
type CustomRoleRepository interface {
	Create(ctx context.Context, role *models.CustomRole) error
	GetByID(ctx context.Context, id uuid.UUID) (models.CustomRole, error)
	List(ctx context.Context, filter CustomRoleFilter) ([]models.CustomRole, int64, error)
	Update(ctx context.Context, role *models.CustomRole) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customRoleRepository struct {
	db *gorm.DB
}

// NewCustomRoleRepository constructs a custom role repository.
func NewCustomRoleRepository(db *gorm.DB) CustomRoleRepository {
	return &customRoleRepository{db: db}
}

func (r *customRoleRepository) Create(ctx context.Context, role *models.CustomRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *customRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (models.CustomRole, error) {
	var role models.CustomRole
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return models.CustomRole{}, err
	}
	return role, nil
}

func (r *customRoleRepository) List(ctx context.Context, filter CustomRoleFilter) ([]models.CustomRole, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomRole{})

	if filter.InstitutionID != nil {
		if filter.IncludeGlobal {
			query = query.Where("institution_id = ? OR institution_id IS NULL", *filter.InstitutionID)
		} else {
			query = query.Where("institution_id = ?", *filter.InstitutionID)
		}
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var roles []models.CustomRole
	if err := query.Order("created_at DESC").Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

func (r *customRoleRepository) Update(ctx context.Context, role *models.CustomRole) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *customRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CustomRole{}, "id = ?", id).Error
}
