package middleware

import (
	"strings"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/types"
	"github.com/gofiber/fiber/v2"
)

// TokenFromRequest extracts the bearer credential: the token cookie
// first, then the Authorization header. Empty string when absent.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("token"); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// RequireAuth resolves the request credential and stores the actor id in
// context. A missing or invalid credential ends the request here; the
// handler behind it never runs without a verified actor.
func RequireAuth(mgr *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := services.ResolveCredential(mgr, TokenFromRequest(c))
		if err != nil {
			return err
		}
		if !ident.Authenticated() {
			return types.InvalidCredential("authentication required")
		}

		c.Locals("userId", ident.ActorID)

		return c.Next()
	}
}

// ActorID returns the verified actor id set by RequireAuth.
func ActorID(c *fiber.Ctx) string {
	if id, ok := c.Locals("userId").(string); ok {
		return id
	}
	return ""
}
