package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/handler"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/service"
)

type stubInstitutionService struct {
	response    dto.InstitutionResponse
	err         error
	calls       int
	lastID      uuid.UUID
	lastCascade bool
}

func (s *stubInstitutionService) Create(_ context.Context, _ policy.Actor, _ dto.InstitutionCreateRequest) (dto.InstitutionResponse, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubInstitutionService) Get(_ context.Context, _ policy.Actor, id uuid.UUID) (dto.InstitutionResponse, error) {
	s.calls++
	s.lastID = id
	return s.response, s.err
}

func (s *stubInstitutionService) List(_ context.Context, _ policy.Actor, _ dto.InstitutionListRequest) (dto.InstitutionListResponse, error) {
	s.calls++
	return dto.InstitutionListResponse{}, s.err
}

func (s *stubInstitutionService) Update(_ context.Context, _ policy.Actor, id uuid.UUID, _ dto.InstitutionUpdateRequest) (dto.InstitutionResponse, error) {
	s.calls++
	s.lastID = id
	return s.response, s.err
}

func (s *stubInstitutionService) Delete(_ context.Context, _ policy.Actor, id uuid.UUID, cascade bool) error {
	s.calls++
	s.lastID = id
	s.lastCascade = cascade
	return s.err
}

func (s *stubInstitutionService) Stats(_ context.Context, _ policy.Actor, id uuid.UUID) (dto.InstitutionStatsResponse, error) {
	s.calls++
	s.lastID = id
	return dto.InstitutionStatsResponse{}, s.err
}

func institutionApp(svc service.InstitutionService, withActor bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/institutions", func(c *fiber.Ctx) error {
		if withActor {
			c.Locals("actor", policy.Actor{ID: uuid.New(), Role: models.RoleSuperAdmin})
		}
		return c.Next()
	})
	handler.NewInstitutionHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestInstitutionHandler_GetSuccess(t *testing.T) {
	id := uuid.New()
	svc := &stubInstitutionService{response: dto.InstitutionResponse{ID: id, Name: "Riverside High School"}}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/institutions/"+id.String(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                    `json:"success"`
		Data    dto.InstitutionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.True(t, payload.Success)
	require.Equal(t, "Riverside High School", payload.Data.Name)
	require.Equal(t, id, svc.lastID)
}

func TestInstitutionHandler_GetNotFound(t *testing.T) {
	svc := &stubInstitutionService{err: service.ErrInstitutionNotFound}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/institutions/"+uuid.NewString(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInstitutionHandler_InvalidIdentifier(t *testing.T) {
	svc := &stubInstitutionService{}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/institutions/not-a-uuid", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.calls)
}

func TestInstitutionHandler_MissingActor(t *testing.T) {
	svc := &stubInstitutionService{}
	app := institutionApp(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/institutions/"+uuid.NewString(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, svc.calls)
}

func TestInstitutionHandler_DeniedCarriesReason(t *testing.T) {
	svc := &stubInstitutionService{err: &service.DeniedError{Reason: policy.ReasonNoMatchingPolicy}}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/institutions/"+uuid.NewString(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.False(t, payload.Success)
	require.Equal(t, string(policy.ReasonNoMatchingPolicy), payload.Reason)
}

func TestInstitutionHandler_DeleteConflict(t *testing.T) {
	svc := &stubInstitutionService{err: service.ErrReferentialIntegrityViolation}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/institutions/"+uuid.NewString(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.False(t, svc.lastCascade)
}

func TestInstitutionHandler_DeleteCascadeFlag(t *testing.T) {
	svc := &stubInstitutionService{}
	app := institutionApp(svc, true)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/institutions/"+uuid.NewString()+"?cascade=true", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.lastCascade)
}
