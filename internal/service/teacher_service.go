package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// TeacherService manages teacher staff records within an institution.
type TeacherService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.TeacherCreateRequest) (dto.TeacherResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.TeacherResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.TeacherListRequest) (dto.TeacherListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.TeacherUpdateRequest) (dto.TeacherResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type teacherService struct {
	db           *gorm.DB
	repo         repository.TeacherRepository
	institutions repository.InstitutionRepository
	audit        AuditService
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(db *gorm.DB, repo repository.TeacherRepository, institutions repository.InstitutionRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) TeacherService {
	return &teacherService{
		db:           db,
		repo:         repo,
		institutions: institutions,
		audit:        audit,
		validator:    validate,
		logger:       logger.With().Str("component", "teacher_service").Logger(),
	}
}

func (s *teacherService) Create(ctx context.Context, actor policy.Actor, payload dto.TeacherCreateRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherResponse{}, err
	}

	resource := policy.ScopedResource(policy.KindTeacher, payload.InstitutionID)
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.TeacherResponse{}, denied(decision.Reason)
	}

	institution, err := s.institutions.GetByID(ctx, payload.InstitutionID)
	if err != nil {
		return dto.TeacherResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}
	if institution.Status == models.InstitutionSuspended {
		return dto.TeacherResponse{}, ErrInstitutionSuspended
	}

	teacher := models.Teacher{
		Name:          payload.Name,
		Email:         payload.Email,
		InstitutionID: payload.InstitutionID,
		Subjects:      datatypes.JSONSlice[string](payload.Subjects),
		Status:        models.TeacherActive,
	}
	if payload.Status != nil {
		teacher.Status = models.TeacherStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewTeacherRepository(tx).Create(ctx, &teacher); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindTeacher,
			RecordID: teacher.ID,
			After:    teacher,
		})
	})
	if err != nil {
		return dto.TeacherResponse{}, err
	}

	return dto.NewTeacherResponse(teacher), nil
}

func (s *teacherService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.TeacherResponse, error) {
	teacher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TeacherResponse{}, translateNotFound(err, ErrTeacherNotFound)
	}

	resource := policy.TeacherResource(teacher)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.TeacherResponse{}, denied(decision.Reason)
	}

	return dto.NewTeacherResponse(teacher), nil
}

func (s *teacherService) List(ctx context.Context, actor policy.Actor, req dto.TeacherListRequest) (dto.TeacherListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.TeacherListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	teachers, total, err := s.repo.List(ctx, repository.TeacherFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		Status:        req.Status,
		InstitutionID: scope,
	})
	if err != nil {
		return dto.TeacherListResponse{}, storeErr(err)
	}

	items := make([]dto.TeacherResponse, 0, len(teachers))
	for _, teacher := range teachers {
		items = append(items, dto.NewTeacherResponse(teacher))
	}
	return dto.TeacherListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *teacherService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.TeacherUpdateRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherResponse{}, err
	}

	teacher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TeacherResponse{}, translateNotFound(err, ErrTeacherNotFound)
	}

	resource := policy.TeacherResource(teacher)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.TeacherResponse{}, denied(decision.Reason)
	}

	before := teacher
	if payload.Name != nil {
		teacher.Name = *payload.Name
	}
	if payload.Email != nil {
		teacher.Email = *payload.Email
	}
	if payload.Subjects != nil {
		teacher.Subjects = datatypes.JSONSlice[string](payload.Subjects)
	}
	if payload.Status != nil {
		teacher.Status = models.TeacherStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewTeacherRepository(tx).Update(ctx, &teacher); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindTeacher,
			RecordID: teacher.ID,
			Before:   before,
			After:    teacher,
		})
	})
	if err != nil {
		return dto.TeacherResponse{}, err
	}

	return dto.NewTeacherResponse(teacher), nil
}

func (s *teacherService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	teacher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrTeacherNotFound)
	}

	resource := policy.TeacherResource(teacher)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewTeacherRepository(tx).Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindTeacher,
			RecordID: id,
			Before:   teacher,
		})
	})
}
