package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/wallet"
)

// Handler exposes the login and refresh endpoints.
type Handler struct {
	users   *identity.Service
	tokens  *Service
	wallets *wallet.Service
}

// NewHandler constructs an auth handler.
func NewHandler(users *identity.Service, tokens *Service, wallets *wallet.Service) *Handler {
	return &Handler{users: users, tokens: tokens, wallets: wallets}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID        string `json:"user_id"`
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	ExpiresIn     int64  `json:"expires_in"`
	AccountNumber string `json:"account_number,omitempty"`
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	pair, err := h.tokens.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not issue tokens")
	}

	var accountNumber string
	if h.wallets != nil {
		if w, err := h.wallets.ByOwner(c.UserContext(), user.ID); err == nil {
			accountNumber = w.AccountNumber
		}
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		UserID:        user.ID,
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		ExpiresIn:     pair.ExpiresIn,
		AccountNumber: accountNumber,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.tokens.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}
