package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newTeacherService(t *testing.T) (TeacherService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewTeacherService(env.db, repository.NewTeacherRepository(env.db), repository.NewInstitutionRepository(env.db), env.audit, newTestValidator(), zerolog.Nop())
	return svc, env
}

func TestTeacherCreateByInstitutionAdmin(t *testing.T) {
	svc, env := newTeacherService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)

	created, err := svc.Create(ctx, institutionAdminActor(institution.ID), dto.TeacherCreateRequest{
		Name:          "John Smith",
		Email:         "john@school.test",
		InstitutionID: institution.ID,
		Subjects:      []string{"math", "physics"},
	})
	require.NoError(t, err)
	require.Equal(t, institution.ID, created.InstitutionID)
	require.Equal(t, []string{"math", "physics"}, created.Subjects)
	require.Equal(t, string(models.TeacherActive), created.Status)
	require.Equal(t, int64(1), countAuditEntries(t, env.db, "create"))
}

func TestTeacherCreateCrossInstitutionDenied(t *testing.T) {
	svc, env := newTeacherService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)

	_, err := svc.Create(ctx, institutionAdminActor(home.ID), dto.TeacherCreateRequest{
		Name:          "John Smith",
		Email:         "john@school.test",
		InstitutionID: other.ID,
	})
	require.ErrorIs(t, err, ErrDenied)

	reason, ok := DenyReasonOf(err)
	require.True(t, ok)
	require.Equal(t, policy.ReasonCrossInstitution, reason)
	require.Equal(t, int64(1), countAuditEntries(t, env.db, models.ActionAccessDenied))
}

func TestTeacherCreateSuspendedInstitution(t *testing.T) {
	svc, env := newTeacherService(t)

	institution := seedInstitution(t, env.db, models.InstitutionSuspended)

	_, err := svc.Create(context.Background(), superAdminActor(), dto.TeacherCreateRequest{
		Name:          "John Smith",
		Email:         "john@school.test",
		InstitutionID: institution.ID,
	})
	require.ErrorIs(t, err, ErrInstitutionSuspended)
}

func TestTeacherUpdateAndDelete(t *testing.T) {
	svc, env := newTeacherService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	teacher := seedTeacher(t, env.db, institution.ID)
	admin := institutionAdminActor(institution.ID)

	updated, err := svc.Update(ctx, admin, teacher.ID, dto.TeacherUpdateRequest{
		Status: strPtr(string(models.TeacherOnLeave)),
	})
	require.NoError(t, err)
	require.Equal(t, string(models.TeacherOnLeave), updated.Status)

	// Management may update but never delete staff records.
	err = svc.Delete(ctx, managementActor(institution.ID), teacher.ID)
	require.ErrorIs(t, err, ErrDenied)

	require.NoError(t, svc.Delete(ctx, admin, teacher.ID))
	_, err = svc.Get(ctx, admin, teacher.ID)
	require.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestTeacherListScopedToInstitution(t *testing.T) {
	svc, env := newTeacherService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	seedTeacher(t, env.db, home.ID)
	seedTeacher(t, env.db, other.ID)

	scoped, err := svc.List(ctx, managementActor(home.ID), dto.TeacherListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	require.Equal(t, home.ID, scoped.Items[0].InstitutionID)

	all, err := svc.List(ctx, superAdminActor(), dto.TeacherListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
}

func TestTeacherCustomRolePermissions(t *testing.T) {
	svc, env := newTeacherService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	teacher := seedTeacher(t, env.db, institution.ID)

	// manage_users grants the full lifecycle on staff records.
	manager := customActor(institution.ID, models.PermissionManageUsers)
	_, err := svc.Get(ctx, manager, teacher.ID)
	require.NoError(t, err)

	// view_reports grants read but nothing else.
	viewer := customActor(institution.ID, models.PermissionViewReports)
	_, err = svc.Get(ctx, viewer, teacher.ID)
	require.NoError(t, err)
	err = svc.Delete(ctx, viewer, teacher.ID)
	require.ErrorIs(t, err, ErrDenied)
}
