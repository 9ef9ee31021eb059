package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// InstitutionService manages the tenant-boundary entity. Creation and
// deletion are super-admin operations; deletion refuses to orphan owned rows
// unless a cascade is explicitly requested.
type InstitutionService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.InstitutionCreateRequest) (dto.InstitutionResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.InstitutionResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.InstitutionListRequest) (dto.InstitutionListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.InstitutionUpdateRequest) (dto.InstitutionResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID, cascade bool) error
	Stats(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.InstitutionStatsResponse, error)
}

type institutionService struct {
	db        *gorm.DB
	repo      repository.InstitutionRepository
	audit     AuditService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewInstitutionService constructs the institution service.
func NewInstitutionService(db *gorm.DB, repo repository.InstitutionRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) InstitutionService {
	return &institutionService{
		db:        db,
		repo:      repo,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "institution_service").Logger(),
	}
}

func (s *institutionService) Create(ctx context.Context, actor policy.Actor, payload dto.InstitutionCreateRequest) (dto.InstitutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstitutionResponse{}, err
	}

	resource := policy.NewInstitutionResource()
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.InstitutionResponse{}, denied(decision.Reason)
	}

	institution := models.Institution{
		Name:         s.sanitizer.Sanitize(payload.Name),
		Address:      s.sanitizeOptional(payload.Address),
		ContactEmail: payload.ContactEmail,
		ContactPhone: payload.ContactPhone,
		Status:       models.InstitutionPending,
	}
	if payload.Status != nil {
		institution.Status = models.InstitutionStatus(*payload.Status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewInstitutionRepository(tx).Create(ctx, &institution); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindInstitution,
			RecordID: institution.ID,
			After:    institution,
		})
	})
	if err != nil {
		return dto.InstitutionResponse{}, err
	}

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.InstitutionResponse, error) {
	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.InstitutionResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}

	resource := policy.InstitutionResource(institution)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.InstitutionResponse{}, denied(decision.Reason)
	}

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) List(ctx context.Context, actor policy.Actor, req dto.InstitutionListRequest) (dto.InstitutionListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.InstitutionListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}
	if scope != nil {
		// Scoped actors only ever see their own institution row, and only
		// when their role may read it at all.
		resource := policy.Resource{Kind: policy.KindInstitution, ID: *scope, InstitutionID: scope}
		if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
			s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
			return dto.InstitutionListResponse{}, denied(decision.Reason)
		}
	}

	filter := repository.InstitutionFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Status:   req.Status,
		ID:       scope,
	}
	institutions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.InstitutionListResponse{}, storeErr(err)
	}

	items := make([]dto.InstitutionResponse, 0, len(institutions))
	for _, institution := range institutions {
		items = append(items, dto.NewInstitutionResponse(institution))
	}
	return dto.InstitutionListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *institutionService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.InstitutionUpdateRequest) (dto.InstitutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstitutionResponse{}, err
	}

	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.InstitutionResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}

	resource := policy.InstitutionResource(institution)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.InstitutionResponse{}, denied(decision.Reason)
	}

	before := institution
	if payload.Name != nil {
		institution.Name = s.sanitizer.Sanitize(*payload.Name)
	}
	if payload.Address != nil {
		institution.Address = s.sanitizeOptional(payload.Address)
	}
	if payload.ContactEmail != nil {
		institution.ContactEmail = payload.ContactEmail
	}
	if payload.ContactPhone != nil {
		institution.ContactPhone = payload.ContactPhone
	}
	if payload.Status != nil {
		institution.Status = models.InstitutionStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewInstitutionRepository(tx).Update(ctx, &institution); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindInstitution,
			RecordID: institution.ID,
			Before:   before,
			After:    institution,
		})
	})
	if err != nil {
		return dto.InstitutionResponse{}, err
	}

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID, cascade bool) error {
	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrInstitutionNotFound)
	}

	resource := policy.InstitutionResource(institution)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	counts, err := s.repo.CountOwned(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if counts.Total() > 0 && !cascade {
		return ErrReferentialIntegrityViolation
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewInstitutionRepository(tx)
		if cascade {
			if err := txRepo.DeleteOwned(ctx, id); err != nil {
				return storeErr(err)
			}
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindInstitution,
			RecordID: id,
			Before:   institution,
		})
	})
}

func (s *institutionService) Stats(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.InstitutionStatsResponse, error) {
	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.InstitutionStatsResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}

	resource := policy.InstitutionResource(institution)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.InstitutionStatsResponse{}, denied(decision.Reason)
	}

	counts, err := s.repo.CountOwned(ctx, id)
	if err != nil {
		return dto.InstitutionStatsResponse{}, storeErr(err)
	}

	return dto.InstitutionStatsResponse{
		InstitutionID: id,
		Teachers:      counts.Teachers,
		Students:      counts.Students,
		Classes:       counts.Classes,
		Profiles:      counts.Profiles,
		CustomRoles:   counts.CustomRoles,
	}, nil
}

func (s *institutionService) sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*value)
	return &clean
}
