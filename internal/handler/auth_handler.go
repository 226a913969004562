package handler

import (
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Email == "" || req.Password == "" {
		return fail(c, apperror.NewValidation("Email and password are required"))
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(response)
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return fail(c, apperror.NewValidation("Email, old_password, and new_password are required"))
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Me returns the signed-in user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Token == "" {
		return fail(c, apperror.NewValidation("Token is required"))
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"valid": true, "user": user.ToResponse()})
}
