package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/ledger"
)

// Handler exposes wallet HTTP endpoints for the authenticated user.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transactionResponse struct {
	Reference string `json:"reference"`
	Type      string `json:"transaction_type"`
	Amount    string `json:"amount"`
	Sender    string `json:"sender,omitempty"`
	Receiver  string `json:"receiver,omitempty"`
	Verified  bool   `json:"verified"`
	Timestamp string `json:"transaction_time"`
}

// Details returns the current user's wallet with its live balance.
func (h *Handler) Details(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	w, err := h.service.ByOwner(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet does not exist")
		}
		return fiber.NewError(http.StatusInternalServerError, "could not load wallet")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_number": w.AccountNumber,
		"balance":        w.Balance.StringFixed(2),
		"created_at":     w.CreatedAt,
	})
}

// History lists the user's latest transactions, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.service.History(c.UserContext(), uid, limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load history")
	}

	out := make([]transactionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, transactionResponse{
			Reference: rec.Reference,
			Type:      string(rec.Type),
			Amount:    rec.Amount.StringFixed(2),
			Sender:    rec.SenderID,
			Receiver:  rec.ReceiverID,
			Verified:  rec.Verified,
			Timestamp: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
