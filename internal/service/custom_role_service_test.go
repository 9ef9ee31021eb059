package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newCustomRoleService(t *testing.T) (CustomRoleService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewCustomRoleService(env.db, repository.NewCustomRoleRepository(env.db), env.audit, newTestValidator(), zerolog.Nop())
	return svc, env
}

func TestCustomRoleManagementCRUD(t *testing.T) {
	svc, env := newCustomRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	manager := managementActor(institution.ID)
	institutionID := institution.ID

	created, err := svc.Create(ctx, manager, dto.CustomRoleCreateRequest{
		Name:          "Registrar",
		Permissions:   []string{"manage_users", "view_reports"},
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"manage_users", "view_reports"}, created.Permissions)

	updated, err := svc.Update(ctx, manager, created.ID, dto.CustomRoleUpdateRequest{
		Permissions: []string{"view_reports"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"view_reports"}, updated.Permissions)

	require.NoError(t, svc.Delete(ctx, manager, created.ID))
	_, err = svc.Get(ctx, manager, created.ID)
	require.ErrorIs(t, err, ErrCustomRoleNotFound)
}

func TestCustomRoleInstitutionAdminDenied(t *testing.T) {
	svc, env := newCustomRoleService(t)

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	_, err := svc.Create(context.Background(), institutionAdminActor(institution.ID), dto.CustomRoleCreateRequest{
		Name:          "Registrar",
		Permissions:   []string{"manage_users"},
		InstitutionID: &institutionID,
	})
	require.ErrorIs(t, err, ErrDenied)
}

func TestCustomRoleGlobalOnlySuperAdmin(t *testing.T) {
	svc, env := newCustomRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)

	// A bundle with no institution is global; management cannot create one.
	_, err := svc.Create(ctx, managementActor(institution.ID), dto.CustomRoleCreateRequest{
		Name:        "Auditor",
		Permissions: []string{"view_reports"},
	})
	require.ErrorIs(t, err, ErrDenied)

	created, err := svc.Create(ctx, superAdminActor(), dto.CustomRoleCreateRequest{
		Name:        "Auditor",
		Permissions: []string{"view_reports"},
	})
	require.NoError(t, err)
	require.Nil(t, created.InstitutionID)

	// Nor can management modify or remove the global bundle afterwards.
	newName := "Auditor II"
	_, err = svc.Update(ctx, managementActor(institution.ID), created.ID, dto.CustomRoleUpdateRequest{Name: &newName})
	require.ErrorIs(t, err, ErrDenied)

	err = svc.Delete(ctx, managementActor(institution.ID), created.ID)
	require.ErrorIs(t, err, ErrDenied)

	fetched, err := svc.Get(ctx, superAdminActor(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Auditor", fetched.Name)
}

func TestCustomRoleListIncludesGlobal(t *testing.T) {
	svc, env := newCustomRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID
	otherID := other.ID

	for _, role := range []models.CustomRole{
		{Name: "Registrar", Permissions: datatypes.JSONSlice[string]{"manage_users"}, InstitutionID: &institutionID},
		{Name: "Foreign", Permissions: datatypes.JSONSlice[string]{"manage_users"}, InstitutionID: &otherID},
		{Name: "Auditor", Permissions: datatypes.JSONSlice[string]{"view_reports"}},
	} {
		r := role
		require.NoError(t, env.db.Create(&r).Error)
	}

	listed, err := svc.List(ctx, managementActor(institution.ID), dto.CustomRoleListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, listed.Items, 2)

	names := []string{listed.Items[0].Name, listed.Items[1].Name}
	require.ElementsMatch(t, []string{"Registrar", "Auditor"}, names)
}

func TestCustomRoleInvalidPermissionTag(t *testing.T) {
	svc, env := newCustomRoleService(t)

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	_, err := svc.Create(context.Background(), superAdminActor(), dto.CustomRoleCreateRequest{
		Name:          "Broken",
		Permissions:   []string{"rule_the_world"},
		InstitutionID: &institutionID,
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDenied)
}
