package middleware

import (
	"strings"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/service"
	"vapestore-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// principalKey is the fiber Locals key holding the resolved service.Principal
const principalKey = "principal"

// RequireAuth validates the bearer token, resolves the acting user once and
// stores it for downstream handlers. The request context also carries a
// logger tagged with the request and user ids.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return Error(c, apperror.NewUnauthenticated("Missing authorization token"))
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return Error(c, apperror.NewUnauthenticated("Invalid authorization format. Use: Bearer <token>"))
		}

		// Validate token and the single active session
		user, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return Error(c, err)
		}

		p := service.Principal{UserID: user.ID, Name: user.Name, Role: user.Role}
		c.Locals(principalKey, p)

		log := logger.FromContext(c.UserContext()).With(
			"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
			"user_id", user.ID,
		)
		c.SetUserContext(logger.WithLogger(c.UserContext(), log))

		return c.Next()
	}
}

// RequireRole rejects principals below min in the role lattice
func RequireRole(min model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Principal(c).Role.AtLeast(min) {
			return Error(c, apperror.NewForbidden("Insufficient permissions").WithDetail("required_role", min))
		}
		return c.Next()
	}
}

// Principal returns the acting user set by RequireAuth, or the zero principal
func Principal(c *fiber.Ctx) service.Principal {
	p, _ := c.Locals(principalKey).(service.Principal)
	return p
}

// Error writes err as {"error", "code", "details"} with its mapped status
func Error(c *fiber.Ctx, err error) error {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewIntegrity(err)
	}
	if appErr.Code == apperror.CodeIntegrity {
		logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}

	body := fiber.Map{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.HTTPStatus).JSON(body)
}
