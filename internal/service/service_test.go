package service

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Institution{},
		&models.Profile{},
		&models.CustomRole{},
		&models.Teacher{},
		&models.Student{},
		&models.Class{},
		&models.Assignment{},
		&models.AuditLog{},
	))
	return db
}

type testEnv struct {
	db    *gorm.DB
	audit AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	return &testEnv{db: db, audit: newTestAudit(db)}
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestAudit(db *gorm.DB) AuditService {
	return NewAuditService(db, repository.NewAuditLogRepository(db), nil, "", zerolog.Nop())
}

func seedInstitution(t *testing.T, db *gorm.DB, status models.InstitutionStatus) models.Institution {
	t.Helper()
	institution := models.Institution{Name: "Test Institution", Status: status}
	require.NoError(t, db.Create(&institution).Error)
	return institution
}

func seedTeacher(t *testing.T, db *gorm.DB, institutionID uuid.UUID) models.Teacher {
	t.Helper()
	teacher := models.Teacher{
		Name:          "Jane Doe",
		Email:         "jane@school.test",
		InstitutionID: institutionID,
		Status:        models.TeacherActive,
	}
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

func seedClass(t *testing.T, db *gorm.DB, institutionID uuid.UUID, teacherID *uuid.UUID) models.Class {
	t.Helper()
	class := models.Class{
		Name:          "Algebra",
		InstitutionID: institutionID,
		TeacherID:     teacherID,
		MaxStudents:   30,
		Status:        models.ClassActive,
	}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func superAdminActor() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: models.RoleSuperAdmin}
}

func managementActor(institutionID uuid.UUID) policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: models.RoleManagement, InstitutionID: &institutionID}
}

func institutionAdminActor(institutionID uuid.UUID) policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: models.RoleInstitutionAdmin, InstitutionID: &institutionID}
}

func teacherActor(institutionID, teacherID uuid.UUID) policy.Actor {
	return policy.Actor{
		ID:            uuid.New(),
		Role:          models.RoleTeacher,
		InstitutionID: &institutionID,
		TeacherID:     &teacherID,
	}
}

func customActor(institutionID uuid.UUID, permissions ...models.Permission) policy.Actor {
	return policy.Actor{
		ID:            uuid.New(),
		Role:          models.RoleCustom,
		InstitutionID: &institutionID,
		Permissions:   permissions,
	}
}

// countAuditEntries reports how many audit rows exist for the given action.
func countAuditEntries(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func strPtr(s string) *string { return &s }
