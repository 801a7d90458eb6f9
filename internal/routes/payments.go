package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/payments"
)

// RegisterPaymentRoutes wires the wallet-to-wallet transfer endpoint.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/wallet/transfer", h.Transfer)
}
