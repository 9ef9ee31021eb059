package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newStudentService(t *testing.T) (StudentService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewStudentService(env.db, repository.NewStudentRepository(env.db), repository.NewInstitutionRepository(env.db), env.audit, newTestValidator(), zerolog.Nop())
	return svc, env
}

func TestStudentCreateValidatesGrade(t *testing.T) {
	svc, env := newStudentService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	admin := institutionAdminActor(institution.ID)

	_, err := svc.Create(ctx, admin, dto.StudentCreateRequest{
		Name:          "Alice",
		Email:         "alice@school.test",
		Grade:         "grade_13",
		InstitutionID: institution.ID,
	})
	require.ErrorIs(t, err, ErrInvalidGrade)

	created, err := svc.Create(ctx, admin, dto.StudentCreateRequest{
		Name:          "Alice",
		Email:         "alice@school.test",
		Grade:         "grade_7",
		InstitutionID: institution.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "grade_7", created.Grade)
}

func TestStudentUpdateGrade(t *testing.T) {
	svc, env := newStudentService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	admin := institutionAdminActor(institution.ID)

	created, err := svc.Create(ctx, admin, dto.StudentCreateRequest{
		Name:          "Bob",
		Email:         "bob@school.test",
		Grade:         "grade_7",
		InstitutionID: institution.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, admin, created.ID, dto.StudentUpdateRequest{Grade: strPtr("invalid")})
	require.ErrorIs(t, err, ErrInvalidGrade)

	updated, err := svc.Update(ctx, admin, created.ID, dto.StudentUpdateRequest{Grade: strPtr("grade_8")})
	require.NoError(t, err)
	require.Equal(t, "grade_8", updated.Grade)
	require.Equal(t, int64(1), countAuditEntries(t, env.db, "update"))
}

func TestStudentAccessDeniedForTeachers(t *testing.T) {
	svc, env := newStudentService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	teacher := seedTeacher(t, env.db, institution.ID)

	student := models.Student{
		Name:          "Carol",
		Email:         "carol@school.test",
		Grade:         "grade_9",
		InstitutionID: institution.ID,
		Status:        models.StudentActive,
	}
	require.NoError(t, env.db.Create(&student).Error)

	_, err := svc.Get(ctx, teacherActor(institution.ID, teacher.ID), student.ID)
	require.ErrorIs(t, err, ErrDenied)
}

func TestStudentDeleteRecordsAudit(t *testing.T) {
	svc, env := newStudentService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	admin := institutionAdminActor(institution.ID)

	student := models.Student{
		Name:          "Dave",
		Email:         "dave@school.test",
		Grade:         "grade_10",
		InstitutionID: institution.ID,
		Status:        models.StudentActive,
	}
	require.NoError(t, env.db.Create(&student).Error)

	require.NoError(t, svc.Delete(ctx, admin, student.ID))
	require.Equal(t, int64(1), countAuditEntries(t, env.db, "delete"))

	_, err := svc.Get(ctx, admin, student.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
