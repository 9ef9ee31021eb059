package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// CustomRoleService manages named permission bundles. A bundle with no
// institution is global and only super admins may touch it.
type CustomRoleService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.CustomRoleCreateRequest) (dto.CustomRoleResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.CustomRoleResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.CustomRoleListRequest) (dto.CustomRoleListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.CustomRoleUpdateRequest) (dto.CustomRoleResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type customRoleService struct {
	db        *gorm.DB
	repo      repository.CustomRoleRepository
	audit     AuditService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCustomRoleService constructs the custom role service.
func NewCustomRoleService(db *gorm.DB, repo repository.CustomRoleRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) CustomRoleService {
	return &customRoleService{
		db:        db,
		repo:      repo,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "custom_role_service").Logger(),
	}
}

func (s *customRoleService) Create(ctx context.Context, actor policy.Actor, payload dto.CustomRoleCreateRequest) (dto.CustomRoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CustomRoleResponse{}, err
	}

	resource := policy.Resource{Kind: policy.KindCustomRole, InstitutionID: payload.InstitutionID}
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.CustomRoleResponse{}, denied(decision.Reason)
	}

	role := models.CustomRole{
		Name:          s.sanitizer.Sanitize(payload.Name),
		Description:   s.sanitizeOptional(payload.Description),
		Permissions:   datatypes.JSONSlice[string](payload.Permissions),
		InstitutionID: payload.InstitutionID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCustomRoleRepository(tx).Create(ctx, &role); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindCustomRole,
			RecordID: role.ID,
			After:    role,
		})
	})
	if err != nil {
		return dto.CustomRoleResponse{}, err
	}

	return dto.NewCustomRoleResponse(role), nil
}

func (s *customRoleService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.CustomRoleResponse, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.CustomRoleResponse{}, translateNotFound(err, ErrCustomRoleNotFound)
	}

	resource := policy.CustomRoleResource(role)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.CustomRoleResponse{}, denied(decision.Reason)
	}

	return dto.NewCustomRoleResponse(role), nil
}

func (s *customRoleService) List(ctx context.Context, actor policy.Actor, req dto.CustomRoleListRequest) (dto.CustomRoleListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.CustomRoleListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	filter := repository.CustomRoleFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		InstitutionID: scope,
		// Scoped actors see global bundles alongside their own institution's.
		IncludeGlobal: scope != nil,
	}
	roles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.CustomRoleListResponse{}, storeErr(err)
	}

	items := make([]dto.CustomRoleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, dto.NewCustomRoleResponse(role))
	}
	return dto.CustomRoleListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *customRoleService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.CustomRoleUpdateRequest) (dto.CustomRoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CustomRoleResponse{}, err
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.CustomRoleResponse{}, translateNotFound(err, ErrCustomRoleNotFound)
	}

	resource := policy.CustomRoleResource(role)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.CustomRoleResponse{}, denied(decision.Reason)
	}

	before := role
	if payload.Name != nil {
		role.Name = s.sanitizer.Sanitize(*payload.Name)
	}
	if payload.Description != nil {
		role.Description = s.sanitizeOptional(payload.Description)
	}
	if payload.Permissions != nil {
		role.Permissions = datatypes.JSONSlice[string](payload.Permissions)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCustomRoleRepository(tx).Update(ctx, &role); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindCustomRole,
			RecordID: role.ID,
			Before:   before,
			After:    role,
		})
	})
	if err != nil {
		return dto.CustomRoleResponse{}, err
	}

	return dto.NewCustomRoleResponse(role), nil
}

func (s *customRoleService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrCustomRoleNotFound)
	}

	resource := policy.CustomRoleResource(role)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCustomRoleRepository(tx).Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindCustomRole,
			RecordID: id,
			Before:   role,
		})
	})
}

func (s *customRoleService) sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*value)
	return &clean
}
