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

// AssignmentService manages coursework. Assignments always belong to the
// teacher assigned to their class, so a class without a teacher cannot carry
// coursework.
type AssignmentService interface {
	Create(ctx context.Context, actor policy.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.AssignmentResponse, error)
	List(ctx context.Context, actor policy.Actor, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type assignmentService struct {
	db        *gorm.DB
	repo      repository.AssignmentRepository
	classes   repository.ClassRepository
	audit     AuditService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(db *gorm.DB, repo repository.AssignmentRepository, classes repository.ClassRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		db:        db,
		repo:      repo,
		classes:   classes,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, actor policy.Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		return dto.AssignmentResponse{}, translateNotFound(err, ErrClassNotFound)
	}
	if class.TeacherID == nil {
		return dto.AssignmentResponse{}, ErrClassHasNoTeacher
	}

	// The new row inherits the class's institution and teacher, so ownership
	// checks run against the class before the row exists.
	resource := policy.Resource{
		Kind:          policy.KindAssignment,
		InstitutionID: &class.InstitutionID,
		TeacherID:     class.TeacherID,
	}
	if decision := policy.Authorize(actor, policy.ActionCreate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionCreate, resource)
		return dto.AssignmentResponse{}, denied(decision.Reason)
	}

	assignment := models.Assignment{
		Title:       s.sanitizer.Sanitize(payload.Title),
		Description: s.sanitizeOptional(payload.Description),
		ClassID:     class.ID,
		TeacherID:   *class.TeacherID,
		DueDate:     payload.DueDate,
		TotalPoints: payload.TotalPoints,
		Status:      models.AssignmentDraft,
	}
	if payload.Status != nil {
		assignment.Status = models.AssignmentStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAssignmentRepository(tx).Create(ctx, &assignment); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "create",
			Table:    policy.KindAssignment,
			RecordID: assignment.ID,
			After:    assignment,
		})
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (dto.AssignmentResponse, error) {
	assignment, class, err := s.load(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	resource := policy.AssignmentResource(assignment, class)
	if decision := policy.Authorize(actor, policy.ActionRead, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionRead, resource)
		return dto.AssignmentResponse{}, denied(decision.Reason)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, actor policy.Actor, req dto.AssignmentListRequest) (dto.AssignmentListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.AssignmentListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	filter := repository.AssignmentFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Search:        req.Search,
		Status:        req.Status,
		ClassID:       req.ClassID,
		InstitutionID: scope,
	}
	// Teachers only ever list their own coursework.
	if actor.Role == models.RoleTeacher {
		if actor.TeacherID == nil {
			return dto.AssignmentListResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		filter.TeacherID = actor.TeacherID
	}

	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AssignmentListResponse{}, storeErr(err)
	}

	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, dto.NewAssignmentResponse(assignment))
	}
	return dto.AssignmentListResponse{
		Items:      items,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *assignmentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, class, err := s.load(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	resource := policy.AssignmentResource(assignment, class)
	if decision := policy.Authorize(actor, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionUpdate, resource)
		return dto.AssignmentResponse{}, denied(decision.Reason)
	}

	before := assignment
	if payload.Title != nil {
		assignment.Title = s.sanitizer.Sanitize(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = s.sanitizeOptional(payload.Description)
	}
	if payload.DueDate != nil {
		assignment.DueDate = payload.DueDate
	}
	if payload.TotalPoints != nil {
		assignment.TotalPoints = *payload.TotalPoints
	}
	if payload.Status != nil {
		assignment.Status = models.AssignmentStatus(*payload.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAssignmentRepository(tx).Update(ctx, &assignment); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "update",
			Table:    policy.KindAssignment,
			RecordID: assignment.ID,
			Before:   before,
			After:    assignment,
		})
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	assignment, class, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	resource := policy.AssignmentResource(assignment, class)
	if decision := policy.Authorize(actor, policy.ActionDelete, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, actor, policy.ActionDelete, resource)
		return denied(decision.Reason)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAssignmentRepository(tx).Delete(ctx, id); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    actor,
			Action:   "delete",
			Table:    policy.KindAssignment,
			RecordID: id,
			Before:   assignment,
		})
	})
}

// load fetches an assignment together with its parent class, which carries
// the institution scope the policy engine needs.
func (s *assignmentService) load(ctx context.Context, id uuid.UUID) (models.Assignment, models.Class, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, models.Class{}, translateNotFound(err, ErrAssignmentNotFound)
	}
	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		return models.Assignment{}, models.Class{}, translateNotFound(err, ErrClassNotFound)
	}
	return assignment, class, nil
}

func (s *assignmentService) sanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*value)
	return &clean
}
