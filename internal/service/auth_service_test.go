package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthService(t *testing.T) (AuthService, *redis.Client, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewAuthService(
		repository.NewProfileRepository(db),
		repository.NewTeacherRepository(db),
		client,
		time.Minute,
		testJWTSecret,
		time.Hour,
		zerolog.Nop(),
	)
	return svc, client, db
}

func seedLogin(t *testing.T, db *gorm.DB, email, password string, role models.Role, institutionID *uuid.UUID) models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	profile := models.Profile{
		Name:         "Login User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if institutionID != nil {
		id := *institutionID
		profile.InstitutionID = &id
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _, db := newAuthService(t)
	ctx := context.Background()

	profile := seedLogin(t, db, "root@console.test", "password", models.RoleSuperAdmin, nil)

	actor, token, err := svc.Authenticate(ctx, "root@console.test", "password")
	require.NoError(t, err)
	require.Equal(t, profile.ID, actor.ID)
	require.Equal(t, models.RoleSuperAdmin, actor.Role)

	parsed, err := jwt.Parse(token, func(_ *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, profile.ID.String(), subject)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc, _, db := newAuthService(t)
	ctx := context.Background()

	seedLogin(t, db, "root@console.test", "password", models.RoleSuperAdmin, nil)

	// Wrong password and unknown email are indistinguishable.
	_, _, wrongPassword := svc.Authenticate(ctx, "root@console.test", "nope")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)

	_, _, unknownEmail := svc.Authenticate(ctx, "ghost@console.test", "password")
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestCurrentActorServedFromCache(t *testing.T) {
	svc, _, db := newAuthService(t)
	ctx := context.Background()

	profile := seedLogin(t, db, "root@console.test", "password", models.RoleSuperAdmin, nil)

	_, _, err := svc.Authenticate(ctx, "root@console.test", "password")
	require.NoError(t, err)

	// Removing the row proves the next resolution comes from the cache.
	require.NoError(t, db.Delete(&models.Profile{}, "id = ?", profile.ID).Error)

	actor, err := svc.CurrentActor(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, profile.ID, actor.ID)

	// Once invalidated, resolution falls through to the store and fails.
	svc.InvalidateActor(ctx, profile.ID)
	_, err = svc.CurrentActor(ctx, profile.ID)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAuthenticateDerivesTeacherContext(t *testing.T) {
	svc, _, db := newAuthService(t)
	ctx := context.Background()

	institution := models.Institution{Name: "School", Status: models.InstitutionActive}
	require.NoError(t, db.Create(&institution).Error)
	institutionID := institution.ID

	profile := seedLogin(t, db, "teach@console.test", "password", models.RoleTeacher, &institutionID)

	teacher := models.Teacher{
		Name:          "Teach",
		Email:         "teach@console.test",
		InstitutionID: institution.ID,
		ProfileID:     &profile.ID,
		Status:        models.TeacherActive,
	}
	require.NoError(t, db.Create(&teacher).Error)

	actor, _, err := svc.Authenticate(ctx, "teach@console.test", "password")
	require.NoError(t, err)
	require.NotNil(t, actor.TeacherID)
	require.Equal(t, teacher.ID, *actor.TeacherID)
}

func TestAuthenticateDerivesCustomPermissions(t *testing.T) {
	svc, _, db := newAuthService(t)
	ctx := context.Background()

	institution := models.Institution{Name: "School", Status: models.InstitutionActive}
	require.NoError(t, db.Create(&institution).Error)
	institutionID := institution.ID

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	profile := models.Profile{
		Name:          "Registrar",
		Email:         "registrar@console.test",
		PasswordHash:  string(hash),
		Role:          models.RoleCustom,
		InstitutionID: &institutionID,
		Permissions:   datatypes.JSONSlice[string]{"manage_users", "view_reports"},
	}
	require.NoError(t, db.Create(&profile).Error)

	actor, _, err := svc.Authenticate(ctx, "registrar@console.test", "password")
	require.NoError(t, err)
	require.Len(t, actor.Permissions, 2)
	require.True(t, actor.HasPermission(models.PermissionManageUsers))
	require.True(t, actor.HasPermission(models.PermissionViewReports))
}

func TestLogoutDropsCachedActor(t *testing.T) {
	svc, client, db := newAuthService(t)
	ctx := context.Background()

	profile := seedLogin(t, db, "root@console.test", "password", models.RoleSuperAdmin, nil)

	_, _, err := svc.Authenticate(ctx, "root@console.test", "password")
	require.NoError(t, err)

	key := actorCacheKeyPrefix + profile.ID.String()
	require.Equal(t, int64(1), client.Exists(ctx, key).Val())

	require.NoError(t, svc.Logout(ctx, profile.ID))
	require.Equal(t, int64(0), client.Exists(ctx, key).Val())
}
