package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/identity"
)

// RegisterIdentityRoutes wires user registration.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Post("/users/register", h.Register)
}
