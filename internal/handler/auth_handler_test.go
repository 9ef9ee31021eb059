package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
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

type stubAuthService struct {
	actor     policy.Actor
	token     string
	err       error
	lastEmail string
	logouts   int
}

func (s *stubAuthService) Authenticate(_ context.Context, email, _ string) (policy.Actor, string, error) {
	s.lastEmail = email
	if s.err != nil {
		return policy.Actor{}, "", s.err
	}
	return s.actor, s.token, nil
}

func (s *stubAuthService) CurrentActor(_ context.Context, _ uuid.UUID) (policy.Actor, error) {
	return s.actor, s.err
}

func (s *stubAuthService) Logout(_ context.Context, _ uuid.UUID) error {
	s.logouts++
	return s.err
}

func (s *stubAuthService) InvalidateActor(_ context.Context, _ uuid.UUID) {}

func authApp(svc service.AuthService) *fiber.App {
	validate := validator.New(validator.WithRequiredStructEnabled())
	h := handler.NewAuthHandler(svc, validate, zerolog.Nop())

	app := fiber.New()
	h.RegisterPublic(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &stubAuthService{
		actor: policy.Actor{ID: uuid.New(), Role: models.RoleSuperAdmin},
		token: "signed-token",
	}
	app := authApp(svc)

	body := `{"email":"super@admin.com","password":"password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.True(t, payload.Success)
	require.Equal(t, "signed-token", payload.Data.Token)
	require.Equal(t, "super@admin.com", svc.lastEmail)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: service.ErrInvalidCredentials}
	app := authApp(svc)

	body := `{"email":"super@admin.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_LoginRejectsMalformedPayload(t *testing.T) {
	svc := &stubAuthService{}
	app := authApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.lastEmail)
}
