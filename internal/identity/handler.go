package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates a user and their wallet in one step.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, wallet, err := h.service.Register(c.UserContext(), RegisterInput{
		Email:     req.Email,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrPhoneTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id":        user.ID,
		"email":          user.Email,
		"phone":          user.Phone,
		"account_number": wallet.AccountNumber,
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.service.repo.FindByID(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user_id":    user.ID,
		"email":      user.Email,
		"phone":      user.Phone,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"status":     user.Status,
		"created_at": user.CreatedAt,
	})
}
