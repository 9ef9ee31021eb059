package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newDashboardService(t *testing.T) (DashboardService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewDashboardService(repository.NewStatsRepository(env.db), zerolog.Nop())
	return svc, env
}

func TestDashboardSuperAdminSeesEverything(t *testing.T) {
	svc, env := newDashboardService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	teacher := seedTeacher(t, env.db, home.ID)
	teacherID := teacher.ID
	class := seedClass(t, env.db, home.ID, &teacherID)
	seedClass(t, env.db, other.ID, nil)
	require.NoError(t, env.db.Create(&models.Assignment{
		Title:       "Worksheet",
		ClassID:     class.ID,
		TeacherID:   teacher.ID,
		TotalPoints: 10,
	}).Error)

	summary, err := svc.Summary(ctx, superAdminActor())
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.Institutions)
	require.Equal(t, int64(1), summary.Teachers)
	require.Equal(t, int64(2), summary.Classes)
	require.Equal(t, int64(1), summary.Assignments)
}

func TestDashboardScopedToInstitution(t *testing.T) {
	svc, env := newDashboardService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	seedTeacher(t, env.db, home.ID)
	seedTeacher(t, env.db, other.ID)
	seedClass(t, env.db, other.ID, nil)

	summary, err := svc.Summary(ctx, managementActor(home.ID))
	require.NoError(t, err)
	require.Zero(t, summary.Institutions)
	require.Equal(t, int64(1), summary.Teachers)
	require.Zero(t, summary.Classes)
}

func TestDashboardTeacherCounts(t *testing.T) {
	svc, env := newDashboardService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	owner := seedTeacher(t, env.db, institution.ID)
	colleague := seedTeacher(t, env.db, institution.ID)
	ownerID := owner.ID
	colleagueID := colleague.ID
	seedClass(t, env.db, institution.ID, &ownerID)
	seedClass(t, env.db, institution.ID, &colleagueID)

	summary, err := svc.Summary(ctx, teacherActor(institution.ID, owner.ID))
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.Classes)
	require.Zero(t, summary.Teachers)
}

func TestDashboardCustomNeedsViewReports(t *testing.T) {
	svc, env := newDashboardService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	seedTeacher(t, env.db, institution.ID)

	_, err := svc.Summary(ctx, customActor(institution.ID, models.PermissionManageUsers))
	require.ErrorIs(t, err, ErrDenied)

	summary, err := svc.Summary(ctx, customActor(institution.ID, models.PermissionViewReports))
	require.NoError(t, err)
	require.Equal(t, int64(1), summary.Teachers)
}
