package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// AuditChange describes a committed state change for the audit trail.
type AuditChange struct {
	Actor    policy.Actor
	Action   string
	Table    policy.ResourceKind
	RecordID uuid.UUID
	// Before and After are model snapshots; Before is nil on create and
	// After is nil on delete.
	Before interface{}
	After  interface{}
}

// AuditService writes and reads the append-only audit trail. Committed
// entries are additionally fanned out as events on NATS for downstream
// consumers, best effort.
type AuditService interface {
	// RecordChange appends an entry using the caller's transaction handle so
	// the entry commits or rolls back together with the mutation it records.
	RecordChange(ctx context.Context, tx *gorm.DB, change AuditChange) error
	// RecordDenied appends an access_denied entry outside any transaction.
	RecordDenied(ctx context.Context, actor policy.Actor, action policy.Action, resource policy.Resource)
	List(ctx context.Context, actor policy.Actor, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	db          *gorm.DB
	repo        repository.AuditLogRepository
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
}

type auditEvent struct {
	Action    string     `json:"action"`
	Table     string     `json:"table"`
	RecordID  *uuid.UUID `json:"record_id,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole string     `json:"actor_role"`
	SentAt    time.Time  `json:"sent_at"`
}

// NewAuditService constructs the audit service. The NATS connection may be
// nil, in which case event fan-out is skipped.
func NewAuditService(db *gorm.DB, repo repository.AuditLogRepository, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) AuditService {
	return &auditService{
		db:          db,
		repo:        repo,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "audit_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/edu-admin-api/internal/service/audit"),
	}
}

func (s *auditService) RecordChange(ctx context.Context, tx *gorm.DB, change AuditChange) error {
	ctx, span := s.tracer.Start(ctx, "audit.record_change", trace.WithAttributes(
		attribute.String("audit.action", change.Action),
		attribute.String("audit.table", string(change.Table)),
	))
	defer span.End()

	actorID := change.Actor.ID
	recordID := change.RecordID
	entry := models.AuditLog{
		ActorID:   &actorID,
		ActorRole: string(change.Actor.Role),
		Action:    change.Action,
		TableName: string(change.Table),
		RecordID:  &recordID,
		OldValues: snapshot(change.Before),
		NewValues: snapshot(change.After),
	}

	if err := repository.NewAuditLogRepository(tx).Create(ctx, &entry); err != nil {
		return storeErr(err)
	}

	s.publish(entry)
	return nil
}

func (s *auditService) RecordDenied(ctx context.Context, actor policy.Actor, action policy.Action, resource policy.Resource) {
	actorID := actor.ID
	entry := models.AuditLog{
		ActorID:   &actorID,
		ActorRole: string(actor.Role),
		Action:    models.ActionAccessDenied,
		TableName: string(resource.Kind),
		NewValues: snapshot(map[string]interface{}{"attempted_action": string(action)}),
	}
	if resource.ID != uuid.Nil {
		recordID := resource.ID
		entry.RecordID = &recordID
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		// The denial itself was already surfaced to the caller; losing the
		// trail entry is logged, not propagated.
		s.logger.Error().Err(err).
			Str("table", string(resource.Kind)).
			Str("attempted_action", string(action)).
			Msg("failed to record access denial")
		return
	}

	s.publish(entry)
}

func (s *auditService) List(ctx context.Context, actor policy.Actor, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	scope, ok := policy.ListScope(actor)
	if !ok {
		return dto.AuditListResponse{}, denied(policy.ReasonNoMatchingPolicy)
	}

	decision := policy.Authorize(actor, policy.ActionRead, policy.AuditLogResource(scope))
	if !decision.Allowed {
		s.RecordDenied(ctx, actor, policy.ActionRead, policy.AuditLogResource(scope))
		return dto.AuditListResponse{}, denied(decision.Reason)
	}

	filter := repository.AuditLogFilter{
		Limit:              req.Limit,
		Action:             req.Action,
		TableName:          req.TableName,
		ActorInstitutionID: scope,
	}
	entries, err := s.repo.ListRecent(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, storeErr(err)
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditLogResponse(entry))
	}
	return dto.AuditListResponse{Items: items}, nil
}

func (s *auditService) publish(entry models.AuditLog) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(auditEvent{
		Action:    entry.Action,
		Table:     entry.TableName,
		RecordID:  entry.RecordID,
		ActorID:   entry.ActorID,
		ActorRole: entry.ActorRole,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish audit event")
	}
}
