package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/service"
	"github.com/noah-isme/edu-admin-api/internal/utils"
)

// InstitutionHandler wires institution endpoints.
type InstitutionHandler struct {
	service service.InstitutionService
	logger  zerolog.Logger
}

// NewInstitutionHandler constructs the handler.
func NewInstitutionHandler(service service.InstitutionService, logger zerolog.Logger) *InstitutionHandler {
	return &InstitutionHandler{
		service: service,
		logger:  logger.With().Str("component", "institution_handler").Logger(),
	}
}

// Register attaches institution routes to the router group.
func (h *InstitutionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/stats", h.stats)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *InstitutionHandler) create(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.InstitutionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	institution, err := h.service.Create(c.UserContext(), actor, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create institution")
	}
	return utils.SendCreated(c, "institution created", institution)
}

func (h *InstitutionHandler) list(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	response, err := h.service.List(c.UserContext(), actor, dto.InstitutionListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list institutions")
	}
	return utils.SendSuccess(c, "institutions retrieved", response)
}

func (h *InstitutionHandler) get(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	institution, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "institution not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch institution")
	}
	return utils.SendSuccess(c, "institution retrieved", institution)
}

func (h *InstitutionHandler) stats(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	stats, err := h.service.Stats(c.UserContext(), actor, id)
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "institution not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch institution stats")
	}
	return utils.SendSuccess(c, "institution stats retrieved", stats)
}

func (h *InstitutionHandler) update(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.InstitutionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	institution, err := h.service.Update(c.UserContext(), actor, id, payload)
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "institution not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update institution")
	}
	return utils.SendSuccess(c, "institution updated", institution)
}

func (h *InstitutionHandler) delete(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	cascade := c.QueryBool("cascade")
	if err := h.service.Delete(c.UserContext(), actor, id, cascade); err != nil {
		switch {
		case errors.Is(err, service.ErrInstitutionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "institution not found")
		case errors.Is(err, service.ErrReferentialIntegrityViolation):
			return utils.SendError(c, fiber.StatusConflict, "institution still owns records; pass cascade=true to remove them")
		default:
			return sendServiceError(c, requestLogger(h.logger, c), err, "failed to delete institution")
		}
	}
	return utils.SendSuccess(c, "institution deleted", fiber.Map{"id": id})
}
