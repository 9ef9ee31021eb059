package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/service"
	"github.com/noah-isme/edu-admin-api/internal/utils"
)

// CustomRoleHandler wires custom role endpoints.
type CustomRoleHandler struct {
	service service.CustomRoleService
	logger  zerolog.Logger
}

// NewCustomRoleHandler constructs the handler.
func NewCustomRoleHandler(service service.CustomRoleService, logger zerolog.Logger) *CustomRoleHandler {
	return &CustomRoleHandler{
		service: service,
		logger:  logger.With().Str("component", "custom_role_handler").Logger(),
	}
}

// Register attaches custom role routes to the router group.
func (h *CustomRoleHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CustomRoleHandler) create(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CustomRoleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.service.Create(c.UserContext(), actor, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create custom role")
	}
	return utils.SendCreated(c, "custom role created", role)
}

func (h *CustomRoleHandler) list(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	response, err := h.service.List(c.UserContext(), actor, dto.CustomRoleListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list custom roles")
	}
	return utils.SendSuccess(c, "custom roles retrieved", response)
}

func (h *CustomRoleHandler) get(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	role, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		if errors.Is(err, service.ErrCustomRoleNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "custom role not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch custom role")
	}
	return utils.SendSuccess(c, "custom role retrieved", role)
}

func (h *CustomRoleHandler) update(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.CustomRoleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.service.Update(c.UserContext(), actor, id, payload)
	if err != nil {
		if errors.Is(err, service.ErrCustomRoleNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "custom role not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update custom role")
	}
	return utils.SendSuccess(c, "custom role updated", role)
}

func (h *CustomRoleHandler) delete(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		if errors.Is(err, service.ErrCustomRoleNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "custom role not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to delete custom role")
	}
	return utils.SendSuccess(c, "custom role deleted", fiber.Map{"id": id})
}
