package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// RoleService is the privileged mutation path for a profile's role and
// institution binding. Every change runs through the policy engine, is
// validated against the role/institution pairing invariant and commits
// atomically with its audit entry.
type RoleService interface {
	AssignRole(ctx context.Context, initiator policy.Actor, targetID uuid.UUID, payload dto.AssignRoleRequest) (dto.ProfileResponse, error)
}

type roleService struct {
	db        *gorm.DB
	profiles  repository.ProfileRepository
	audit     AuditService
	sessions  AuthService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewRoleService constructs the role assignment service.
func NewRoleService(db *gorm.DB, profiles repository.ProfileRepository, audit AuditService, sessions AuthService, validate *validator.Validate, logger zerolog.Logger) RoleService {
	return &roleService{
		db:        db,
		profiles:  profiles,
		audit:     audit,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "role_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/edu-admin-api/internal/service/role"),
	}
}

func (s *roleService) AssignRole(ctx context.Context, initiator policy.Actor, targetID uuid.UUID, payload dto.AssignRoleRequest) (dto.ProfileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "role.assign", trace.WithAttributes(
		attribute.String("role.target", targetID.String()),
		attribute.String("role.new", payload.Role),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	target, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		return dto.ProfileResponse{}, translateNotFound(err, ErrProfileNotFound)
	}
	resource := policy.ProfileResource(target)

	// Nobody edits their own role, not even to demote themselves; this
	// closes both self-escalation and accidental lock-out.
	if initiator.ID == targetID {
		s.audit.RecordDenied(ctx, initiator, policy.ActionUpdate, resource)
		return dto.ProfileResponse{}, denied(policy.ReasonSelfModification)
	}

	if decision := policy.Authorize(initiator, policy.ActionUpdate, resource); !decision.Allowed {
		s.audit.RecordDenied(ctx, initiator, policy.ActionUpdate, resource)
		return dto.ProfileResponse{}, denied(decision.Reason)
	}

	newRole := models.Role(payload.Role)
	if err := s.checkInitiatorRank(ctx, initiator, newRole, payload.InstitutionID, resource); err != nil {
		return dto.ProfileResponse{}, err
	}

	before := target
	updated := target
	updated.Role = newRole
	updated.InstitutionID = payload.InstitutionID
	if newRole == models.RoleCustom {
		updated.Permissions = datatypes.JSONSlice[string](payload.Permissions)
	} else {
		updated.Permissions = nil
	}

	if !updated.PairingValid() {
		return dto.ProfileResponse{}, ErrInvalidRoleInstitutionPairing
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProfileRepository(tx).Update(ctx, &updated); err != nil {
			return storeErr(err)
		}
		return s.audit.RecordChange(ctx, tx, AuditChange{
			Actor:    initiator,
			Action:   "assign_role",
			Table:    policy.KindProfile,
			RecordID: updated.ID,
			Before:   before,
			After:    updated,
		})
	})
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	// The target's cached actor context is stale the moment the new role
	// commits.
	s.sessions.InvalidateActor(ctx, targetID)

	s.logger.Info().
		Str("target", targetID.String()).
		Str("role", payload.Role).
		Msg("role assigned")
	return dto.NewProfileResponse(updated), nil
}

// checkInitiatorRank enforces who may hand out which roles: only super admins
// and management change roles at all, and management stays below its own rank
// and inside its own institution.
func (s *roleService) checkInitiatorRank(ctx context.Context, initiator policy.Actor, newRole models.Role, newInstitutionID *uuid.UUID, resource policy.Resource) error {
	switch initiator.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleManagement:
		if newRole.Rank() >= initiator.Role.Rank() {
			s.audit.RecordDenied(ctx, initiator, policy.ActionUpdate, resource)
			return denied(policy.ReasonNoMatchingPolicy)
		}
		if newInstitutionID == nil || initiator.InstitutionID == nil || *newInstitutionID != *initiator.InstitutionID {
			s.audit.RecordDenied(ctx, initiator, policy.ActionUpdate, resource)
			return denied(policy.ReasonCrossInstitution)
		}
		return nil
	default:
		s.audit.RecordDenied(ctx, initiator, policy.ActionUpdate, resource)
		return denied(policy.ReasonNoMatchingPolicy)
	}
}
