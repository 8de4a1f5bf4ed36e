package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/api/dto"
	"github.com/hubly/helpdesk-service/internal/service"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// AuthHandler issues staff tokens.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": dto.LoginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			User: &dto.AssigneeResponse{
				ID:        result.User.ID,
				FirstName: result.User.FirstName,
				LastName:  result.User.LastName,
				Email:     result.User.Email,
				Role:      result.User.Role,
			},
		},
	})
}
