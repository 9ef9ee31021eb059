package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// InstitutionFilter narrows institution listings.
type InstitutionFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	// ID restricts the listing to a single institution, used to apply the
	// actor's implicit scope.
	ID *uuid.UUID
}

// OwnedCounts breaks down the rows still owned by an institution.
type OwnedCounts struct {
	Teachers    int64
	Students    int64
	Classes     int64
	Profiles    int64
	CustomRoles int64
}

// Total sums all owned rows.
func (c OwnedCounts) Total() int64 {
	return c.Teachers + c.Students + c.Classes + c.Profiles + c.CustomRoles
}

// InstitutionRepository provides access to institution records.
type InstitutionRepository interface {
	Create(ctx context.Context, institution *models.Institution) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Institution, error)
	List(ctx context.Context, filter InstitutionFilter) ([]models.Institution, int64, error)
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountOwned reports how many rows still reference the institution.
	CountOwned(ctx context.Context, id uuid.UUID) (OwnedCounts, error)
	// DeleteOwned removes every row owned by the institution. Callers are
	// expected to run this inside a transaction together with Delete.
	DeleteOwned(ctx context.Context, id uuid.UUID) error
}

type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository constructs an institution repository.
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

func (r *institutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	return r.db.WithContext(ctx).Create(institution).Error
}

func (r *institutionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).First(&institution, "id = ?", id).Error; err != nil {
		return models.Institution{}, err
	}
	return institution, nil
}

func (r *institutionRepository) List(ctx context.Context, filter InstitutionFilter) ([]models.Institution, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Institution{})

	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var institutions []models.Institution
	if err := query.Order("created_at DESC").Find(&institutions).Error; err != nil {
		return nil, 0, err
	}
	return institutions, total, nil
}

func (r *institutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	return r.db.WithContext(ctx).Save(institution).Error
}

func (r *institutionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Institution{}, "id = ?", id).Error
}

func (r *institutionRepository) CountOwned(ctx context.Context, id uuid.UUID) (OwnedCounts, error) {
	var counts OwnedCounts
	db := r.db.WithContext(ctx)

	type ownedModel struct {
		model interface{}
		dest  *int64
	}
	owned := []ownedModel{
		{&models.Teacher{}, &counts.Teachers},
		{&models.Student{}, &counts.Students},
		{&models.Class{}, &counts.Classes},
		{&models.Profile{}, &counts.Profiles},
		{&models.CustomRole{}, &counts.CustomRoles},
	}
	for _, o := range owned {
		if err := db.Model(o.model).Where("institution_id = ?", id).Count(o.dest).Error; err != nil {
			return OwnedCounts{}, err
		}
	}
	return counts, nil
}

func (r *institutionRepository) DeleteOwned(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	// Assignments hang off classes, so they go first.
	classIDs := db.Model(&models.Class{}).Select("id").Where("institution_id = ?", id)
	if err := db.Where("class_id IN (?)", classIDs).Delete(&models.Assignment{}).Error; err != nil {
		return err
	}

	for _, model := range []interface{}{&models.Class{}, &models.Teacher{}, &models.Student{}, &models.CustomRole{}, &models.Profile{}} {
		if err := db.Where("institution_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
