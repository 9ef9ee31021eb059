package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edu-admin-api/internal/policy"
	"github.com/noah-isme/edu-admin-api/internal/service"
	"github.com/noah-isme/edu-admin-api/internal/utils"
)

// ResolveActor exchanges the authenticated profile identifier for the full
// actor context, served from the session cache when warm. It must run after
// JWTProtected.
func ResolveActor(sessions service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profileID, ok := ProfileID(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		actor, err := sessions.CurrentActor(c.UserContext(), profileID)
		if err != nil {
			// A valid token for a deleted profile is just an expired session.
			return utils.SendError(c, fiber.StatusUnauthorized, "session no longer valid")
		}

		c.Locals("actor", actor)
		return c.Next()
	}
}

// Actor returns the resolved actor bound by ResolveActor, or false when the
// request never passed through it.
func Actor(c *fiber.Ctx) (policy.Actor, bool) {
	actor, ok := c.Locals("actor").(policy.Actor)
	return actor, ok
}
