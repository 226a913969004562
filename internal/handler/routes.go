package handler

import (
	"vapestore-pos/internal/middleware"
	"vapestore-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Role      *RoleHandler
	Inventory *InventoryHandler
	Catalog   *CatalogHandler
	Sales     *SalesHandler
	Dashboard *DashboardHandler
	Shift     *ShiftHandler
}

// RegisterRoutes mounts the REST API under /api/v1. requireAuth resolves the
// principal for every route outside /auth/login, /auth/reset-password and
// /auth/validate-token.
func RegisterRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)
	protected.Get("/auth/me", h.Auth.Me)

	// Dashboard
	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)
	protected.Get("/dashboard/activities", h.Dashboard.GetRecentActivities)

	// Catalog
	protected.Get("/brands", h.Catalog.GetBrands)
	protected.Post("/brands", h.Catalog.CreateBrand)
	protected.Put("/brands/:id", h.Catalog.UpdateBrand)
	protected.Get("/categories", h.Catalog.GetCategories)
	protected.Post("/categories", h.Catalog.CreateCategory)
	protected.Put("/categories/:id", h.Catalog.UpdateCategory)

	// Products and stock; static paths before :id
	protected.Get("/products", h.Inventory.GetProducts)
	protected.Get("/products/low-stock", h.Inventory.GetLowStock)
	protected.Post("/products/upload-image", h.Inventory.UploadImage)
	protected.Post("/products", h.Inventory.CreateProduct)
	protected.Get("/products/:id", h.Inventory.GetProduct)
	protected.Put("/products/:id", adminOnly, h.Inventory.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, h.Inventory.DeleteProduct)
	protected.Post("/products/:id/stock", h.Inventory.UpdateStock)
	protected.Get("/products/:id/movements", h.Inventory.GetStockMovements)
	protected.Get("/products/:id/ledger", h.Inventory.GetLedgerBalance)

	// Sales
	protected.Post("/sales", h.Sales.CreateSale)
	protected.Post("/sales/quick", h.Sales.CreateQuickSale)
	protected.Get("/sales", h.Sales.GetSales)
	protected.Get("/sales/analytics", adminOnly, h.Sales.GetAnalytics)
	protected.Get("/sales/summary", h.Sales.GetSummary)
	protected.Get("/sales/payment-methods", h.Sales.GetPaymentMethodStats)
	protected.Get("/sales/:id", h.Sales.GetSale)

	// Shifts and pay
	protected.Post("/shifts/start", h.Shift.StartShift)
	protected.Post("/shifts/end", h.Shift.EndShift)
	protected.Get("/shifts/active", h.Shift.GetActiveShift)
	protected.Post("/work-sessions", h.Shift.CreateWorkSession)
	protected.Get("/work-sessions", h.Shift.GetWorkSessions)

	// Users
	protected.Get("/users/settings", h.Shift.GetSettings)
	protected.Get("/users", adminOnly, h.User.GetUsers)
	protected.Post("/users", adminOnly, h.User.CreateUser)
	protected.Delete("/users/:id", adminOnly, h.User.DeleteUser)
	protected.Put("/users/:id/hourly-rate", adminOnly, h.Shift.UpdateHourlyRate)
	protected.Get("/roles", h.Role.GetRoles)
}
