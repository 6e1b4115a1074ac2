package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expense-share/internal/api/dto"
	"github.com/spec-kit/expense-share/internal/service"
)

// AuthHandler exposes the login and registration endpoints. Login response
// bodies are fixed wire contracts; they bypass the generic error envelope
// so that clients always see the same shapes.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(dto.MessageResponse{
			Message: "Username and password are required",
		})
	}

	token, _, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(http.StatusUnauthorized).JSON(dto.MessageResponse{
				Message: "Invalid username or password",
			})
		case errors.Is(err, service.ErrTooManyAttempts):
			return c.Status(http.StatusTooManyRequests).JSON(dto.MessageResponse{
				Message: "Too many failed login attempts",
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(dto.MessageResponse{
				Message: "Authentication error: " + err.Error(),
			})
		}
	}

	return c.JSON(dto.LoginResponse{
		Token:   token,
		Message: "Authentication successful",
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(dto.MessageResponse{
			Message: "Username and password are required",
		})
	}

	record, err := h.auth.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return c.Status(http.StatusConflict).JSON(dto.MessageResponse{
				Message: "Username already registered",
			})
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.RegisterResponse{Username: record.Username, Roles: record.Roles},
	})
}
