package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/config"
	"vapestore-pos/internal/handler"
	"vapestore-pos/internal/middleware"
	"vapestore-pos/internal/repository"
	"vapestore-pos/internal/service"
	"vapestore-pos/internal/storage"
	"vapestore-pos/internal/ws"
	"vapestore-pos/pkg/database"
	"vapestore-pos/pkg/jwt"
	"vapestore-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// 1. Load config
	cfg, foundEnv, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()
	logger.SetDefault(appLog)
	ctx := logger.WithLogger(context.Background(), appLog)

	if !foundEnv {
		logger.Warn(ctx, ".env file not found, using process environment")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, appLog, cfg.LogLevel)
	if err != nil {
		logger.Fatal(ctx, "database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal(ctx, "migration failed", "error", err)
	}

	// 3. Setup WebSocket Hub
	done := make(chan struct{})
	wsHub := ws.NewHub(appLog)
	go wsHub.Run(done)

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	settingsRepo := repository.NewUserSettingsRepo(db)
	brandRepo := repository.NewBrandRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	sessionRepo := repository.NewWorkSessionRepo(db)
	activityRepo := repository.NewActivityRepo(db)
	txm := repository.NewTxManager(db)

	recorder := activity.NewRecorder(activityRepo, wsHub, appLog)
	clock := service.NewClock(cfg.Location)
	uploader := storage.NewDiskUploader(cfg.UploadDir, cfg.BaseURL)

	authService := service.NewAuthService(userRepo, jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL))
	userService := service.NewUserService(userRepo, txm, recorder)
	catalogService := service.NewCatalogService(brandRepo, categoryRepo, productRepo, movementRepo, txm, uploader, recorder)
	stockService := service.NewStockService(productRepo, movementRepo, txm, recorder)
	salesService := service.NewSalesService(saleRepo, productRepo, movementRepo, txm, recorder, clock)
	dashService := service.NewDashboardService(productRepo, categoryRepo, userRepo, saleRepo, movementRepo, activityRepo, clock)
	shiftService := service.NewShiftService(sessionRepo, settingsRepo, userRepo, txm, recorder, clock, service.ShiftPolicy{
		CutoffHour:  cfg.ShiftCutoffHour,
		DefaultRate: cfg.DefaultHourlyRate,
	})

	// 5. Seed the main admin account
	if err := userService.EnsureMainAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal(ctx, "main admin bootstrap failed", "error", err)
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Vape Store POS v1.0",
	})

	// Middleware
	app.Use(requestid.New())   // Request correlation
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	app.Static("/uploads", cfg.UploadDir)

	handler.RegisterRoutes(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Role:      handler.NewRoleHandler(userService),
		Inventory: handler.NewInventoryHandler(catalogService, stockService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Sales:     handler.NewSalesHandler(salesService, cfg.Location),
		Dashboard: handler.NewDashboardHandler(dashService),
		Shift:     handler.NewShiftHandler(shiftService),
	}, middleware.RequireAuth(authService))

	// WebSocket Route: live activity and stock events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal(ctx, "server stopped", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error(ctx, "server forced to shutdown", "error", err)
	}
	close(done)

	logger.Info(ctx, "server exited")
}
