package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edu-admin-api/internal/dto"
	"github.com/noah-isme/edu-admin-api/internal/service"
	"github.com/noah-isme/edu-admin-api/internal/utils"
)

const maxAvatarBytes = 5 << 20

// ProfileHandler wires user account endpoints, including role assignment and
// avatar upload.
type ProfileHandler struct {
	profiles service.ProfileService
	roles    service.RoleService
	logger   zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles service.ProfileService, roles service.RoleService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		roles:    roles,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches profile routes to the router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id/role", h.assignRole)
	router.Post("/:id/avatar", h.uploadAvatar)
}

func (h *ProfileHandler) create(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ProfileCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.Create(c.UserContext(), actor, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrInvalidRoleInstitutionPairing):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "invalid role/institution pairing")
		default:
			return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create profile")
		}
	}
	return utils.SendCreated(c, "profile created", profile)
}

func (h *ProfileHandler) list(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	page, pageSize, err := pagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	response, err := h.profiles.List(c.UserContext(), actor, dto.ProfileListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Role:     c.Query("role"),
	})
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list profiles")
	}
	return utils.SendSuccess(c, "profiles retrieved", response)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	profile, err := h.profiles.Get(c.UserContext(), actor, id)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		}
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to fetch profile")
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.Update(c.UserContext(), actor, id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update profile")
		}
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) assignRole(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AssignRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.roles.AssignRole(c.UserContext(), actor, id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		case errors.Is(err, service.ErrInvalidRoleInstitutionPairing):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "invalid role/institution pairing")
		default:
			return sendServiceError(c, requestLogger(h.logger, c), err, "failed to assign role")
		}
	}
	return utils.SendSuccess(c, "role assigned", profile)
}

func (h *ProfileHandler) uploadAvatar(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "avatar file missing")
	}
	if header.Size > maxAvatarBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "avatar exceeds size limit")
	}

	file, err := header.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read avatar")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read avatar")
	}

	profile, err := h.profiles.UploadAvatar(c.UserContext(), actor, id, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		case errors.Is(err, service.ErrUnsupportedAvatarType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "avatar must be an image")
		default:
			return sendServiceError(c, requestLogger(h.logger, c), err, "failed to upload avatar")
		}
	}
	return utils.SendSuccess(c, "avatar uploaded", profile)
}
