package service

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	f.uploads++
	return "https://cdn.test/" + name, nil
}

func newProfileService(t *testing.T) (ProfileService, *fakeUploader, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	uploader := &fakeUploader{}
	svc := NewProfileService(env.db, repository.NewProfileRepository(env.db), env.audit, uploader, bcrypt.MinCost, newTestValidator(), zerolog.Nop())
	return svc, uploader, env
}

func TestProfileCreateHashesPassword(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	created, err := svc.Create(ctx, superAdminActor(), dto.ProfileCreateRequest{
		Name:          "Grace",
		Email:         "grace@school.test",
		Password:      "correct horse battery staple",
		Role:          string(models.RoleTeacher),
		InstitutionID: &institutionID,
	})
	require.NoError(t, err)

	var stored models.Profile
	require.NoError(t, env.db.First(&stored, "id = ?", created.ID).Error)
	require.NotEqual(t, "correct horse battery staple", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery staple")))
}

func TestProfileCreateEnforcesPairing(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	// Institution-bound roles need an institution.
	_, err := svc.Create(ctx, superAdminActor(), dto.ProfileCreateRequest{
		Name:     "Heidi",
		Email:    "heidi@school.test",
		Password: "password123",
		Role:     string(models.RoleManagement),
	})
	require.ErrorIs(t, err, ErrInvalidRoleInstitutionPairing)

	// Super admins must stay unbound.
	_, err = svc.Create(ctx, superAdminActor(), dto.ProfileCreateRequest{
		Name:          "Heidi",
		Email:         "heidi@school.test",
		Password:      "password123",
		Role:          string(models.RoleSuperAdmin),
		InstitutionID: &institutionID,
	})
	require.ErrorIs(t, err, ErrInvalidRoleInstitutionPairing)
}

func TestProfileCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	payload := dto.ProfileCreateRequest{
		Name:          "Ivan",
		Email:         "ivan@school.test",
		Password:      "password123",
		Role:          string(models.RoleTeacher),
		InstitutionID: &institutionID,
	}

	_, err := svc.Create(ctx, superAdminActor(), payload)
	require.NoError(t, err)

	_, err = svc.Create(ctx, superAdminActor(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestProfileSelfReadAndUpdate(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	profile := models.Profile{
		Name:          "Judy",
		Email:         "judy@school.test",
		PasswordHash:  "x",
		Role:          models.RoleTeacher,
		InstitutionID: &institutionID,
	}
	require.NoError(t, env.db.Create(&profile).Error)

	// Even a role without any profile policy may manage its own account.
	self := policy.Actor{ID: profile.ID, Role: models.RoleTeacher, InstitutionID: &institutionID}

	got, err := svc.Get(ctx, self, profile.ID)
	require.NoError(t, err)
	require.Equal(t, "judy@school.test", got.Email)

	updated, err := svc.Update(ctx, self, profile.ID, dto.ProfileUpdateRequest{Name: strPtr("Judy H")})
	require.NoError(t, err)
	require.Equal(t, "Judy H", updated.Name)

	// Another teacher's profile stays out of reach.
	other := policy.Actor{ID: uuid.New(), Role: models.RoleTeacher, InstitutionID: &institutionID}
	_, err = svc.Get(ctx, other, profile.ID)
	require.ErrorIs(t, err, ErrDenied)
}

func TestProfileManagementCannotReachSuperAdminProfile(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)

	root := models.Profile{
		Name:         "Sarah Wilson",
		Email:        "super@admin.com",
		PasswordHash: "x",
		Role:         models.RoleSuperAdmin,
	}
	require.NoError(t, env.db.Create(&root).Error)

	// A profile with no institution sits outside management's scope entirely.
	_, err := svc.Update(ctx, managementActor(institution.ID), root.ID, dto.ProfileUpdateRequest{
		Email: strPtr("hijacked@school.test"),
	})
	require.ErrorIs(t, err, ErrDenied)

	_, err = svc.Get(ctx, managementActor(institution.ID), root.ID)
	require.ErrorIs(t, err, ErrDenied)

	var stored models.Profile
	require.NoError(t, env.db.First(&stored, "id = ?", root.ID).Error)
	require.Equal(t, "super@admin.com", stored.Email)
}

func TestProfileAvatarUpload(t *testing.T) {
	svc, uploader, env := newProfileService(t)
	ctx := context.Background()

	institution := seedInstitution(t, env.db, models.InstitutionActive)
	institutionID := institution.ID

	profile := models.Profile{
		Name:          "Ken",
		Email:         "ken@school.test",
		PasswordHash:  "x",
		Role:          models.RoleTeacher,
		InstitutionID: &institutionID,
	}
	require.NoError(t, env.db.Create(&profile).Error)
	self := policy.Actor{ID: profile.ID, Role: models.RoleTeacher, InstitutionID: &institutionID}

	// Non-image payloads never reach the uploader.
	_, err := svc.UploadAvatar(ctx, self, profile.ID, "avatar.txt", []byte("plain text"))
	require.ErrorIs(t, err, ErrUnsupportedAvatarType)
	require.Zero(t, uploader.uploads)

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	updated, err := svc.UploadAvatar(ctx, self, profile.ID, "avatar.png", png)
	require.NoError(t, err)
	require.Equal(t, 1, uploader.uploads)
	require.Equal(t, "https://cdn.test/avatar.png", *updated.Avatar)
}

func TestProfileListScoped(t *testing.T) {
	svc, _, env := newProfileService(t)
	ctx := context.Background()

	home := seedInstitution(t, env.db, models.InstitutionActive)
	other := seedInstitution(t, env.db, models.InstitutionActive)
	homeID := home.ID
	otherID := other.ID

	for _, profile := range []models.Profile{
		{Name: "A", Email: "a@school.test", PasswordHash: "x", Role: models.RoleTeacher, InstitutionID: &homeID},
		{Name: "B", Email: "b@school.test", PasswordHash: "x", Role: models.RoleTeacher, InstitutionID: &otherID},
	} {
		p := profile
		require.NoError(t, env.db.Create(&p).Error)
	}

	scoped, err := svc.List(ctx, managementActor(home.ID), dto.ProfileListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	require.Equal(t, "a@school.test", scoped.Items[0].Email)
}
