package handler

import (
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	userService service.UserService
}

func NewRoleHandler(userService service.UserService) *RoleHandler {
	return &RoleHandler{userService: userService}
}

// GetRoles returns the fixed role lattice, lowest first
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(h.userService.ListRoles())
}
