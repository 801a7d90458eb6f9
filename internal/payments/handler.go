package payments

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/ledger"
)

// Request amount bounds in naira.
const (
	minTransferAmount = 1_000
	maxTransferAmount = 10_000_000
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	Amount        int64  `json:"amount"`
	AccountNumber string `json:"account_number"`
}

func (r transferRequest) validate() error {
	if r.Amount < minTransferAmount || r.Amount > maxTransferAmount {
		return fmt.Errorf("amount must be between %d and %d", minTransferAmount, maxTransferAmount)
	}
	if r.AccountNumber == "" || len(r.AccountNumber) > 100 {
		return errors.New("a destination account number is required")
	}
	return nil
}

// Transfer moves funds from the authenticated user's wallet to another
// wallet identified by account number.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	uid, _ := c.Locals("user_id").(string)
	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		ActorID:       uid,
		AccountNumber: req.AccountNumber,
		Amount:        decimal.NewFromInt(req.Amount),
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNotOperable):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ledger.ErrWalletNotFound):
			return fiber.NewError(http.StatusNotFound, "wallet does not exist")
		case errors.Is(err, ledger.ErrSelfTransfer):
			return fiber.NewError(http.StatusBadRequest, "you cannot make a transfer to yourself")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not complete transfer")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     fmt.Sprintf("Transfer to %s was successful", req.AccountNumber),
		"reference":   res.Reference,
		"new_balance": res.NewBalance.StringFixed(2),
	})
}
