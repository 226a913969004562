package handler

import (
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.CreateUser(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers returns the accounts visible to the caller
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.userService.DeleteUser(c.UserContext(), principal(c), userID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
