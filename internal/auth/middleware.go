package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const CtxActorKey = "actor"

// AdminMiddleware guards destructive routes with a bearer token. With an
// empty secret every request passes and the actor is the client address.
func AdminMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			c.Locals(CtxActorKey, c.IP())
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(CtxActorKey, claims.Subject)
		return c.Next()
	}
}

// Actor returns who performed the request: the token subject when the admin
// middleware ran, otherwise the client address.
func Actor(c *fiber.Ctx) string {
	if v, ok := c.Locals(CtxActorKey).(string); ok && v != "" {
		return v
	}
	return c.IP()
}
