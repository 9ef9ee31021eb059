package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

func newRoleService(t *testing.T) (RoleService, AuthService, *redis.Client, *testEnv) {
	t.Helper()

	env := newTestEnv(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	profiles := repository.NewProfileRepository(env.db)
	sessions := NewAuthService(profiles, repository.NewTeacherRepository(env.db), client, time.Minute, testJWTSecret, time.Hour, zerolog.Nop())
	svc := NewRoleService(env.db, profiles, env.audit, sessions, newTestValidator(), zerolog.Nop())
	return svc, sessions, client, env
}

func seedProfileWithRole(t *testing.T, db *gorm.DB, role models.Role, institution *models.Institution) models.Profile {
	t.Helper()

	profile := models.Profile{
		Name:         "Target User",
		Email:        string(role) + "@console.test",
		PasswordHash: "x",
		Role:         role,
	}
	if institution != nil {
		id := institution.ID
		profile.InstitutionID = &id
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestAssignRoleBySuperAdmin(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &institution)
	institutionID := institution.ID

	updated, err := svc.AssignRole(ctx, superAdminActor(), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleManagement),
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)
	require.Equal(t, string(models.RoleManagement), updated.Role)
	require.Equal(t, int64(1), countAuditEntries(t, env.db, "assign_role"))
}

func TestAssignRoleSelfModificationDenied(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	admin := seedProfileWithRole(t, env.db, models.RoleSuperAdmin, nil)
	actor := policy.Actor{ID: admin.ID, Role: models.RoleSuperAdmin}

	_, err := svc.AssignRole(ctx, actor, admin.ID, dto.AssignRoleRequest{
		Role: string(models.RoleSuperAdmin),
	})
	require.ErrorIs(t, err, ErrDenied)

	reason, ok := DenyReasonOf(err)
	require.True(t, ok)
	require.Equal(t, policy.ReasonSelfModification, reason)
	require.Equal(t, int64(1), countAuditEntries(t, env.db, models.ActionAccessDenied))
}

func TestAssignRoleManagementRankCeiling(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &institution)
	institutionID := institution.ID
	manager := managementActor(institution.ID)

	// Management may hand out roles strictly below its own rank.
	updated, err := svc.AssignRole(ctx, manager, target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleInstitutionAdmin),
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)
	require.Equal(t, string(models.RoleInstitutionAdmin), updated.Role)

	// Promoting to its own rank or above is refused.
	_, err = svc.AssignRole(ctx, manager, target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleManagement),
		InstitutionID: &institutionID,
	})
	require.ErrorIs(t, err, ErrDenied)
	reason, _ := DenyReasonOf(err)
	require.Equal(t, policy.ReasonNoMatchingPolicy, reason)
}

func TestAssignRoleManagementCrossInstitution(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &home)
	otherID := other.ID

	_, err := svc.AssignRole(ctx, managementActor(home.ID), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleTeacher),
		InstitutionID: &otherID,
	})
	require.ErrorIs(t, err, ErrDenied)
	reason, _ := DenyReasonOf(err)
	require.Equal(t, policy.ReasonCrossInstitution, reason)
}

func TestAssignRolePairingValidation(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &institution)

	// management without an institution violates the pairing invariant.
	_, err := svc.AssignRole(ctx, superAdminActor(), target.ID, dto.AssignRoleRequest{
		Role: string(models.RoleManagement),
	})
	require.ErrorIs(t, err, ErrInvalidRoleInstitutionPairing)

	// The target row is untouched.
	var stored models.Profile
	require.NoError(t, env.db.First(&stored, "id = ?", target.ID).Error)
	require.Equal(t, models.RoleTeacher, stored.Role)
}

func TestAssignRoleInvalidatesCachedActor(t *testing.T) {
	svc, sessions, client, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &institution)
	institutionID := institution.ID

	// Prime the cache the way a live session would.
	_, err := sessions.CurrentActor(ctx, target.ID)
	require.NoError(t, err)
	key := actorCacheKeyPrefix + target.ID.String()
	require.Equal(t, int64(1), client.Exists(ctx, key).Val())

	_, err = svc.AssignRole(ctx, superAdminActor(), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleInstitutionAdmin),
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), client.Exists(ctx, key).Val())

	// The next resolution sees the new role.
	actor, err := sessions.CurrentActor(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleInstitutionAdmin, actor.Role)
}

func TestAssignRoleCustomKeepsPermissions(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	target := seedProfileWithRole(t, env.db, models.RoleTeacher, &institution)
	institutionID := institution.ID

	updated, err := svc.AssignRole(ctx, superAdminActor(), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleCustom),
		InstitutionID: &institutionID,
		Permissions:   []string{"view_reports", "manage_grades"},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"view_reports", "manage_grades"}, updated.Permissions)

	// Moving away from custom clears the explicit permission set.
	cleared, err := svc.AssignRole(ctx, superAdminActor(), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleTeacher),
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)
	require.Empty(t, cleared.Permissions)
}

func TestAssignRoleTeacherInitiatorDenied(t *testing.T) {
	svc, _, _, env := newRoleService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	teacher := seedTeacher(t, env.db, institution.ID)
	target := seedProfileWithRole(t, env.db, models.RoleCustom, &institution)
	institutionID := institution.ID

	_, err := svc.AssignRole(ctx, teacherActor(institution.ID, teacher.ID), target.ID, dto.AssignRoleRequest{
		Role:          string(models.RoleTeacher),
		InstitutionID: &institutionID,
	})
	require.ErrorIs(t, err, ErrDenied)
}
