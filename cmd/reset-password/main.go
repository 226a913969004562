// Command reset-password restores the main admin's password from ADMIN_EMAIL
// and ADMIN_PASSWORD and signs out every open session of that account.
package main

import (
	"context"
	"log"
	"strings"

	"vapestore-pos/internal/config"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/pkg/database"
	"vapestore-pos/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// 1. Load config
	cfg, _, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLog, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	ctx := logger.WithLogger(context.Background(), appLog)

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, appLog, "error")
	if err != nil {
		logger.Fatal(ctx, "database connection failed", "error", err)
	}
	users := repository.NewUserRepo(db)

	// 3. Find Admin
	user, err := users.FindByEmail(ctx, strings.ToLower(cfg.AdminEmail))
	if err != nil {
		logger.Fatal(ctx, "admin account not found", "email", cfg.AdminEmail, "error", err)
	}
	if user.Role != model.RoleMainAdmin {
		logger.Fatal(ctx, "account is not a main admin", "email", user.Email, "role", user.Role)
	}

	// 4. Hash new password
	if err := user.SetPassword(cfg.AdminPassword); err != nil {
		logger.Fatal(ctx, "failed to hash password", "error", err)
	}

	// 5. Update and revoke existing tokens
	if err := users.UpdatePassword(ctx, user.ID, *user.Password); err != nil {
		logger.Fatal(ctx, "failed to update password", "error", err)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		logger.Fatal(ctx, "failed to revoke sessions", "error", err)
	}

	logger.Info(ctx, "password reset", "email", user.Email)
}
