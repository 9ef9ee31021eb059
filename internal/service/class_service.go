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

// ClassService manages classes within an institution. An assigned teacher
// must always belong to the class's own institution.
type ClassService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.ClassResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.ClassListRequest) (dto.ClassListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type classService struct {
	db           *gorm.DB
	repo         repository.ClassRepository
	teachers     repository.TeacherRepository
	institutions repository.InstitutionRepository
	audit        AuditService
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewClassService constructs the class service.
func NewClassService(db *gorm.DB, repo repository.ClassRepository, teachers repository.TeacherRepository, institutions repository.InstitutionRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		db:           db,
		repo:         repo,
		teachers:     teachers,
		institutions: institutions,
		audit:        audit,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, actor policy.Actor, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	resource := policy.ScopedResource(policy.KindClass, payload.InstitutionID)
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.ClassResponse{}, denied(decision.Reason)
	}

	institution, err := s.institutions.GetByID(ctx, payload.InstitutionID)
	if err != nil {
		return dto.ClassResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}
	if institution.Status == models.InstitutionSuspended {
		return dto.ClassResponse{}, ErrInstitutionSuspended
	}

	if payload.TeacherID != nil {
		if err := s.checkTeacherInstitution(ctx, *payload.TeacherID, payload.InstitutionID); err != nil {
			return dto.ClassResponse{}, err
		}
	}

	class := models.Class{
		Name:          s.sanitizer.Sanitize(payload.Name),
		InstitutionID: payload.InstitutionID,
		TeacherID:     payload.TeacherID,
		Schedule:      s.sanitizeOptional(payload.Schedule),
		Room:          payload.Room,
		MaxStudents:   payload.MaxStudents,
		Status:        models.ClassActive,
	}
	if payload.Status != nil {
		class.Status = models.ClassStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewClassRepository(tx).Create(ctx, &class); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindClass,
			RecordID: class.ID,
			After:    class,
		})
	})
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.ClassResponse, error) {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ClassResponse{}, translateNotFound(err, ErrClassNotFound)
	}

	resource := policy.ClassResource(class)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.ClassResponse{}, denied(decision.Reason)
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context, actor policy.Actor, req dto.ClassListRequest) (dto.ClassListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.ClassListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	filter := repository.ClassFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		Status:        req.Status,
		InstitutionID: scope,
	}
	// Teachers only ever list their own classes.
	if actor.Role == models.RoleTeacher {
		if actor.TeacherID == nil {
			return dto.ClassListResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		filter.TeacherID = actor.TeacherID
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ClassListResponse{}, storeErr(err)
	}

	items := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		items = append(items, dto.NewClassResponse(class))
	}
	return dto.ClassListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *classService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ClassResponse{}, translateNotFound(err, ErrClassNotFound)
	}

	resource := policy.ClassResource(class)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.ClassResponse{}, denied(decision.Reason)
	}

	if payload.TeacherID != nil {
		if err := s.checkTeacherInstitution(ctx, *payload.TeacherID, class.InstitutionID); err != nil {
			return dto.ClassResponse{}, err
		}
	}

	before := class
	teacherChanged := false
	if payload.Name != nil {
		class.Name = s.sanitizer.Sanitize(*payload.Name)
	}
	if payload.TeacherID != nil {
		teacherChanged = class.TeacherID == nil || *class.TeacherID != *payload.TeacherID
		class.TeacherID = payload.TeacherID
	}
	if payload.Schedule != nil {
		class.Schedule = s.sanitizeOptional(payload.Schedule)
	}
	if payload.Room != nil {
		class.Room = payload.Room
	}
	if payload.MaxStudents != nil {
		class.MaxStudents = *payload.MaxStudents
	}
	if payload.Status != nil {
		class.Status = models.ClassStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewClassRepository(tx).Update(ctx, &class); err != nil {
			return storeErr(err)
		}
		// Assignment ownership follows the class teacher, so a handover
		// re-points the class's assignments in the same transaction.
		if teacherChanged {
			if err := repository.NewAssignmentRepository(tx).ReassignTeacher(ctx, class.ID, *class.TeacherID); err != nil {
				return storeErr(err)
			}
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindClass,
			RecordID: class.ID,
			Before:   before,
			After:    class,
		})
	})
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrClassNotFound)
	}

	resource := policy.ClassResource(class)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewClassRepository(tx).Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindClass,
			RecordID: id,
			Before:   class,
		})
	})
}

// checkTeacherInstitution rejects teacher assignments across institution
// boundaries.
func (s *classService) checkTeacherInstitution(ctx context.Context, teacherID, institutionID uuid.UUID) error {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return translateNotFound(err, ErrTeacherNotFound)
	}
	if teacher.InstitutionID != institutionID {
		return ErrTeacherInstitutionMismatch
	}
	return nil
}

func (s *classService) sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*value)
	return &clean
}
