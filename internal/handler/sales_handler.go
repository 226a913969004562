package handler

import (
	"time"

	"vapestore-pos/internal/model"
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	sales service.SalesService
	// loc resolves bare dates in query strings to store-local days
	loc *time.Location
}

func NewSalesHandler(sales service.SalesService, loc *time.Location) *SalesHandler {
	return &SalesHandler{sales: sales, loc: loc}
}

// POST /api/v1/sales
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := h.sales.CreateSale(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// POST /api/v1/sales/quick
func (h *SalesHandler) CreateQuickSale(c *fiber.Ctx) error {
	var req service.QuickSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	sale, err := h.sales.CreateQuickSale(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GET /api/v1/sales/:id
func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	sale, err := h.sales.GetSale(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sale)
}

// GetSales lists the journal newest first
// Query params: start_date, end_date, user_id, payment_method, limit
// GET /api/v1/sales
func (h *SalesHandler) GetSales(c *fiber.Ctx) error {
	from, err := queryTime(c, "start_date", h.loc, false)
	if err != nil {
		return fail(c, err)
	}
	to, err := queryTime(c, "end_date", h.loc, true)
	if err != nil {
		return fail(c, err)
	}
	userID, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}

	sales, err := h.sales.ListSales(c.UserContext(), principal(c), &service.ListSalesRequest{
		From:          from,
		To:            to,
		UserID:        userID,
		PaymentMethod: model.PaymentMethod(c.Query("payment_method")),
		Limit:         c.QueryInt("limit", 0),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sales)
}

// Query params: start_date, end_date (inclusive)
// GET /api/v1/sales/analytics
func (h *SalesHandler) GetAnalytics(c *fiber.Ctx) error {
	from, err := queryTime(c, "start_date", h.loc, false)
	if err != nil {
		return fail(c, err)
	}
	to, err := queryTime(c, "end_date", h.loc, true)
	if err != nil {
		return fail(c, err)
	}

	analytics, err := h.sales.GetSalesAnalytics(c.UserContext(), principal(c), from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(analytics)
}

// Query params: period (today, week, month)
// GET /api/v1/sales/summary
func (h *SalesHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.sales.GetSalesSummary(c.UserContext(), principal(c), c.Query("period"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// GET /api/v1/sales/payment-methods
func (h *SalesHandler) GetPaymentMethodStats(c *fiber.Ctx) error {
	stats, err := h.sales.GetPaymentMethodStats(c.UserContext(), principal(c), c.Query("period"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"period": c.Query("period", service.PeriodToday), "data": stats})
}
