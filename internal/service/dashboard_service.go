package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/repository"
)

// DashboardService aggregates the landing-page counts, shaped by who asks.
type DashboardService interface {
	Summary(ctx context.Context, actor policy.Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	stats  repository.StatsRepository
	logger zerolog.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(stats repository.StatsRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		stats:  stats,
		logger: logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) Summary(ctx context.Context, actor policy.Actor) (dto.DashboardResponse, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		counts, err := s.stats.Counts(ctx, nil)
		if err != nil {
			return dto.DashboardResponse{}, storeErr(err)
		}
		return dashboardResponse(counts), nil

	case models.RoleTeacher:
		if actor.TeacherID == nil {
			return dto.DashboardResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		counts, err := s.stats.TeacherCounts(ctx, *actor.TeacherID)
		if err != nil {
			return dto.DashboardResponse{}, storeErr(err)
		}
		return dashboardResponse(counts), nil

	case models.RoleManagement, models.RoleInstitutionAdmin:
		if actor.InstitutionID == nil {
			return dto.DashboardResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		counts, err := s.stats.Counts(ctx, actor.InstitutionID)
		if err != nil {
			return dto.DashboardResponse{}, storeErr(err)
		}
		return dashboardResponse(counts), nil

	case models.RoleCustom:
		// Aggregates are report data; the explicit tag gates them.
		if !actor.HasPermission(models.PermissionViewReports) {
			return dto.DashboardResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		if actor.InstitutionID == nil {
			return dto.DashboardResponse{}, denied(policy.ReasonNoMatchingPolicy)
		}
		counts, err := s.stats.Counts(ctx, actor.InstitutionID)
		if err != nil {
			return dto.DashboardResponse{}, storeErr(err)
		}
		return dashboardResponse(counts), nil
	}

	return dto.DashboardResponse{}, denied(policy.ReasonNoMatchingPolicy)
}

func dashboardResponse(counts repository.DashboardCounts) dto.DashboardResponse {
	return dto.DashboardResponse{
		Institutions: counts.Institutions,
		Teachers:     counts.Teachers,
		Students:     counts.Students,
		Classes:      counts.Classes,
		Assignments:  counts.Assignments,
	}
}
