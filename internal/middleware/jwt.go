package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/auth"
	"github.com/eazipurse/eazipurse/internal/identity"
)

// JWTAuth returns a middleware that validates JWT access tokens and confirms
// the subject still exists before letting the request through.
func JWTAuth(tokens *auth.Service, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := tokens.VerifyAccess(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		user, err := repo.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		return c.Next()
	}
}
