package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/wallet"
)

// RegisterWalletRoutes wires the authenticated user's wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallet", h.Details)
	r.Get("/wallet/history", h.History)
}
