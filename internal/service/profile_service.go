package service

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// FileUploader stores an uploaded file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ProfileService manages user accounts. Role and institution changes go
// through RoleService; this service covers everything else.
type ProfileService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.ProfileCreateRequest) (dto.ProfileResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.ProfileResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.ProfileListRequest) (dto.ProfileListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, actor policy.Actor, id uuid.UUID, filename string, data []byte) (dto.ProfileResponse, error)
}

type profileService struct {
	db         *gorm.DB
	repo       repository.ProfileRepository
	audit      AuditService
	uploader   FileUploader
	bcryptCost int
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewProfileService constructs the profile service. The uploader may be nil;
// avatar uploads are then rejected as unavailable.
func NewProfileService(db *gorm.DB, repo repository.ProfileRepository, audit AuditService, uploader FileUploader, bcryptCost int, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &profileService{
		db:         db,
		repo:       repo,
		audit:      audit,
		uploader:   uploader,
		bcryptCost: bcryptCost,
		validator:  validate,
		logger:     logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Create(ctx context.Context, actor policy.Actor, payload dto.ProfileCreateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	resource := policy.Resource{Kind: policy.KindProfile, InstitutionID: payload.InstitutionID}
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.ProfileResponse{}, denied(decision.Reason)
	}

	taken, err := s.repo.EmailTaken(ctx, payload.Email, uuid.Nil)
	if err != nil {
		return dto.ProfileResponse{}, storeErr(err)
	}
	if taken {
		return dto.ProfileResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.bcryptCost)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	profile := models.Profile{
		Name:          payload.Name,
		Email:         payload.Email,
		PasswordHash:  string(hash),
		Role:          models.Role(payload.Role),
		InstitutionID: payload.InstitutionID,
	}
	if profile.Role == models.RoleCustom {
		profile.Permissions = datatypes.JSONSlice[string](payload.Permissions)
	}

	if !profile.PairingValid() {
		return dto.ProfileResponse{}, ErrInvalidRoleInstitutionPairing
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProfileRepository(tx).Create(ctx, &profile); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindProfile,
			RecordID: profile.ID,
			After:    profile,
		})
	})
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.ProfileResponse, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, translateNotFound(err, ErrProfileNotFound)
	}

	// Everyone may read their own profile; anything else goes through the
	// policy engine.
	if actor.ID != id {
		resource := policy.ProfileResource(profile)
		if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
			s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
			return dto.ProfileResponse{}, denied(decision.Reason)
		}
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) List(ctx context.Context, actor policy.Actor, req dto.ProfileListRequest) (dto.ProfileListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.ProfileListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	profiles, total, err := s.repo.List(ctx, repository.ProfileFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		Role:          req.Role,
		InstitutionID: scope,
	})
	if err != nil {
		return dto.ProfileListResponse{}, storeErr(err)
	}

	items := make([]dto.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, dto.NewProfileResponse(profile))
	}
	return dto.ProfileListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *profileService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, translateNotFound(err, ErrProfileNotFound)
	}

	// Self-service edits to name and email are always allowed; edits to other
	// profiles require policy approval.
	if actor.ID != id {
		resource := policy.ProfileResource(profile)
		if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
			s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
			return dto.ProfileResponse{}, denied(decision.Reason)
		}
	}

	if payload.Email != nil && *payload.Email != profile.Email {
		taken, err := s.repo.EmailTaken(ctx, *payload.Email, id)
		if err != nil {
			return dto.ProfileResponse{}, storeErr(err)
		}
		if taken {
			return dto.ProfileResponse{}, ErrEmailTaken
		}
	}

	before := profile
	if payload.Name != nil {
		profile.Name = *payload.Name
	}
	if payload.Email != nil {
		profile.Email = *payload.Email
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProfileRepository(tx).Update(ctx, &profile); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindProfile,
			RecordID: profile.ID,
			Before:   before,
			After:    profile,
		})
	})
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, actor policy.Actor, id uuid.UUID, filename string, data []byte) (dto.ProfileResponse, error) {
	if s.uploader == nil {
		return dto.ProfileResponse{}, ErrStoreUnavailable
	}

	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, translateNotFound(err, ErrProfileNotFound)
	}

	if actor.ID != id {
		resource := policy.ProfileResource(profile)
		if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
			s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
			return dto.ProfileResponse{}, denied(decision.Reason)
		}
	}

	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return dto.ProfileResponse{}, ErrUnsupportedAvatarType
	}

	url, err := s.uploader.Upload(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return dto.ProfileResponse{}, storeErr(err)
	}

	before := profile
	profile.Avatar = &url

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProfileRepository(tx).Update(ctx, &profile); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindProfile,
			RecordID: profile.ID,
			Before:   before,
			After:    profile,
		})
	})
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}
