package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
)

// DashboardCounts carries aggregate row counts for the landing dashboard.
type DashboardCounts struct {
	Institutions int64
	Teachers     int64
	Students     int64
	Classes      int64
	Assignments  int64
}

// StatsRepository computes aggregate counts across the store.
type StatsRepository interface {
	// Counts aggregates rows, optionally scoped to one institution. The
	// institution count itself is only populated for the unscoped case.
	Counts(ctx context.Context, institutionID *uuid.UUID) (DashboardCounts, error)
	// TeacherCounts aggregates the classes and assignments owned by one
	// teacher.
	TeacherCounts(ctx context.Context, teacherID uuid.UUID) (DashboardCounts, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository constructs a stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context, institutionID *uuid.UUID) (DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	scoped := func(model any) *gorm.DB {
		query := db.Model(model)
		if institutionID != nil {
			query = query.Where("institution_id = ?", *institutionID)
		}
		return query
	}

	if institutionID == nil {
		if err := db.Model(&models.Institution{}).Count(&counts.Institutions).Error; err != nil {
			return DashboardCounts{}, err
		}
	}
	if err := scoped(&models.Teacher{}).Count(&counts.Teachers).Error; err != nil {
		return DashboardCounts{}, err
	}
	if err := scoped(&models.Student{}).Count(&counts.Students).Error; err != nil {
		return DashboardCounts{}, err
	}
	if err := scoped(&models.Class{}).Count(&counts.Classes).Error; err != nil {
		return DashboardCounts{}, err
	}

	assignments := db.Model(&models.Assignment{})
	if institutionID != nil {
		classIDs := r.db.Model(&models.Class{}).Select("id").Where("institution_id = ?", *institutionID)
		assignments = assignments.Where("class_id IN (?)", classIDs)
	}
	if err := assignments.Count(&counts.Assignments).Error; err != nil {
		return DashboardCounts{}, err
	}

	return counts, nil
}

func (r *statsRepository) TeacherCounts(ctx context.Context, teacherID uuid.UUID) (DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Class{}).Where("teacher_id = ?", teacherID).Count(&counts.Classes).Error; err != nil {
		return DashboardCounts{}, err
	}
	if err := db.Model(&models.Assignment{}).Where("teacher_id = ?", teacherID).Count(&counts.Assignments).Error; err != nil {
		return DashboardCounts{}, err
	}
	return counts, nil
}
