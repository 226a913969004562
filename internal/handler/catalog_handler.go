package handler

import (
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves brands and the category tree
type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// POST /api/v1/brands
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var req service.BrandRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	brand, err := h.catalog.CreateBrand(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// PUT /api/v1/brands/:id
func (h *CatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateBrandRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	brand, err := h.catalog.UpdateBrand(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(brand)
}

// GET /api/v1/brands
func (h *CatalogHandler) GetBrands(c *fiber.Ctx) error {
	brands, err := h.catalog.ListBrands(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(brands)
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	category, err := h.catalog.CreateCategory(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	category, err := h.catalog.UpdateCategory(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(category)
}

// GetCategories returns the full active tree, or with ?available=true only
// the branches that have something to sell
// GET /api/v1/categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	list := h.catalog.ListCategories
	if c.QueryBool("available") {
		list = h.catalog.ListAvailableCategories
	}

	categories, err := list(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}
