package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/summarizer/api/pkg/response"
)

// GatewayAuthMiddleware reads user identity from X-User-* headers set by a
// ForwardAuth gateway and populates Fiber context locals.
func GatewayAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Get("X-User-Name")
		if username == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}

		c.Locals("username", username)
		c.Locals("email", c.Get("X-User-Email"))

		return c.Next()
	}
}
