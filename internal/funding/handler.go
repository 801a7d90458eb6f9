package funding

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
	minFundingAmount = 1_000
	maxFundingAmount = 10_000_000
)

// Handler exposes the funding endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initiateRequest struct {
	Amount int64 `json:"amount"`
}

func (r initiateRequest) validate() error {
	if r.Amount < minFundingAmount || r.Amount > maxFundingAmount {
		return fmt.Errorf("amount must be between %d and %d", minFundingAmount, maxFundingAmount)
	}
	return nil
}

// Initiate opens a gateway checkout session for the authenticated user.
func (h *Handler) Initiate(c *fiber.Ctx) error {
	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	uid, _ := c.Locals("user_id").(string)
	res, err := h.service.Initiate(c.UserContext(), InitiateInput{
		ActorID: uid,
		Amount:  decimal.NewFromInt(req.Amount),
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNotOperable):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrGatewayInit):
			return fiber.NewError(http.StatusBadGateway, "could not initialize payment")
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not initiate funding")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"reference":         res.Reference,
		"authorization_url": res.AuthorizationURL,
		"access_code":       res.AccessCode,
	})
}

// Verify settles a funding transaction by reference. The gateway redirects
// the user here after checkout, so the route is public; the reference alone
// identifies the pending deposit.
func (h *Handler) Verify(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return fiber.NewError(http.StatusBadRequest, "a transaction reference is required")
	}

	res, err := h.service.Verify(c.UserContext(), reference)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrTransactionNotFound):
			return fiber.NewError(http.StatusNotFound, "transaction does not exist")
		case errors.Is(err, ErrGatewayVerification):
			return fiber.NewError(http.StatusBadRequest, "payment was not verified")
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not verify payment")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     "Deposit successful",
		"reference":   res.Reference,
		"amount":      res.Amount.StringFixed(2),
		"new_balance": res.NewBalance.StringFixed(2),
	})
}
