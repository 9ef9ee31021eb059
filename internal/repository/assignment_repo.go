package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	// InstitutionID scopes through the parent class.
	InstitutionID *uuid.UUID
	ClassID       *uuid.UUID
	TeacherID     *uuid.UUID
}

// AssignmentRepository provides access to assignment records.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ReassignTeacher points every assignment of the class at the given
	// teacher, keeping assignment ownership aligned with the class row.
	ReassignTeacher(ctx context.Context, classID, teacherID uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.InstitutionID != nil {
		classIDs := r.db.Model(&models.Class{}).Select("id").Where("institution_id = ?", *filter.InstitutionID)
		query = query.Where("class_id IN (?)", classIDs)
	}
	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Assignment{}, "id = ?", id).Error
}

func (r *assignmentRepository) ReassignTeacher(ctx context.Context, classID, teacherID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("class_id = ?", classID).
		Update("teacher_id", teacherID).Error
}
