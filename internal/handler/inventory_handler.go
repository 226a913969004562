package handler

import (
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler serves products and their stock ledger
type InventoryHandler struct {
	catalog service.CatalogService
	stock   service.StockService
}

func NewInventoryHandler(catalog service.CatalogService, stock service.StockService) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, stock: stock}
}

// UploadImageRequest carries a base64 payload, optionally as a data URL
type UploadImageRequest struct {
	Image    string `json:"image"`
	FileName string `json:"file_name"`
}

// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.catalog.CreateProduct(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.catalog.UpdateProduct(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.catalog.DeleteProduct(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetProducts lists active products. With category_id or subcategory_id it
// switches to the sales view: only products in stock, in that category.
// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	categoryID, err := queryID(c, "category_id")
	if err != nil {
		return fail(c, err)
	}
	subcategoryID, err := queryID(c, "subcategory_id")
	if err != nil {
		return fail(c, err)
	}

	if categoryID == nil && subcategoryID == nil {
		products, err := h.catalog.ListProducts(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(products)
	}

	products, err := h.catalog.GetProductsByCategory(c.UserContext(), categoryID, subcategoryID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// POST /api/v1/products/upload-image
func (h *InventoryHandler) UploadImage(c *fiber.Ctx) error {
	var req UploadImageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	url, err := h.catalog.UploadProductImage(c.UserContext(), principal(c), req.Image, req.FileName)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"image_url": url})
}

// UpdateStock applies a signed adjustment
// POST /api/v1/products/:id/stock
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	result, err := h.stock.UpdateStock(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GET /api/v1/products/:id/movements
func (h *InventoryHandler) GetStockMovements(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	movements, err := h.stock.GetStockMovements(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

// GET /api/v1/products/:id/ledger
func (h *InventoryHandler) GetLedgerBalance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	balance, err := h.stock.GetLedgerBalance(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(balance)
}

// GET /api/v1/products/low-stock
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.stock.GetLowStockProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}
