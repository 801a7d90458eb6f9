package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/funding"
)

// RegisterFundingRoutes wires the authenticated funding endpoint.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/wallet/fund", h.Initiate)
}

// RegisterFundingVerifyRoute wires the public verification callback the
// payment gateway redirects to after checkout.
func RegisterFundingVerifyRoute(r fiber.Router, h *funding.Handler) {
	r.Get("/wallet/verify", h.Verify)
}
