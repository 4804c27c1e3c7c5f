package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDLocal = "userID"

// RequireUser extracts the caller identity from the X-User-ID header
// set by the authenticating layer in front of this service. Requests
// without a valid user id are rejected before reaching a handler.
func RequireUser(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			logger.Warn("missing user id header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "X-User-ID header required",
			})
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Warn("malformed user id header", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user id",
			})
		}

		c.Locals(userIDLocal, id)
		return c.Next()
	}
}

// UserID returns the authenticated caller id stored by RequireUser.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(userIDLocal).(uuid.UUID)
	return id
}
