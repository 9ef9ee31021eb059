package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// StudentService manages student records within an institution.
type StudentService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.StudentResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type studentService struct {
	db           *gorm.DB
	repo         repository.StudentRepository
	institutions repository.InstitutionRepository
	audit        AuditService
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(db *gorm.DB, repo repository.StudentRepository, institutions repository.InstitutionRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		db:           db,
		repo:         repo,
		institutions: institutions,
		audit:        audit,
		validator:    validate,
		logger:       logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, actor policy.Actor, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}
	if !models.ValidGrade(payload.Grade) {
		return dto.StudentResponse{}, ErrInvalidGrade
	}

	resource := policy.ScopedResource(policy.KindStudent, payload.InstitutionID)
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.StudentResponse{}, denied(decision.Reason)
	}

	institution, err := s.institutions.GetByID(ctx, payload.InstitutionID)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrInstitutionNotFound)
	}
	if institution.Status == models.InstitutionSuspended {
		return dto.StudentResponse{}, ErrInstitutionSuspended
	}

	student := models.Student{
		Name:          payload.Name,
		Email:         payload.Email,
		Grade:         payload.Grade,
		InstitutionID: payload.InstitutionID,
		Status:        models.StudentActive,
	}
	if payload.Status != nil {
		student.Status = models.StudentStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewStudentRepository(tx).Create(ctx, &student); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindStudent,
			RecordID: student.ID,
			After:    student,
		})
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.StudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}

	resource := policy.StudentResource(student)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.StudentResponse{}, denied(decision.Reason)
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, actor policy.Actor, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.StudentListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	students, total, err := s.repo.List(ctx, repository.StudentFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		Grade:         req.Grade,
		Status:        req.Status,
		InstitutionID: scope,
	})
	if err != nil {
		return dto.StudentListResponse{}, storeErr(err)
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}
	return dto.StudentListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *studentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}
	if payload.Grade != nil && !models.ValidGrade(*payload.Grade) {
		return dto.StudentResponse{}, ErrInvalidGrade
	}

	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}

	resource := policy.StudentResource(student)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.StudentResponse{}, denied(decision.Reason)
	}

	before := student
	if payload.Name != nil {
		student.Name = *payload.Name
	}
	if payload.Email != nil {
		student.Email = *payload.Email
	}
	if payload.Grade != nil {
		student.Grade = *payload.Grade
	}
	if payload.Status != nil {
		student.Status = models.StudentStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewStudentRepository(tx).Update(ctx, &student); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindStudent,
			RecordID: student.ID,
			Before:   before,
			After:    student,
		})
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrStudentNotFound)
	}

	resource := policy.StudentResource(student)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewStudentRepository(tx).Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindStudent,
			RecordID: id,
			Before:   student,
		})
	})
}
