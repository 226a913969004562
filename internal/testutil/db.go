// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"vapestore-pos/internal/model"
	"vapestore-pos/pkg/database"
	"vapestore-pos/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// A single connection serializes writers the same way row locks do in Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.Config(logger.NewNop(), "silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with password "secret123"
func CreateUser(t *testing.T, db *gorm.DB, name, email string, role model.Role) *model.User {
	t.Helper()

	user := &model.User{Name: name, Email: email, Role: role}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateBrand(t *testing.T, db *gorm.DB, name string) *model.Brand {
	t.Helper()

	brand := &model.Brand{Name: name, IsActive: true}
	require.NoError(t, db.Create(brand).Error)
	return brand
}

func CreateCategory(t *testing.T, db *gorm.DB, name string, parentID *uuid.UUID) *model.Category {
	t.Helper()

	category := &model.Category{Name: name, ParentID: parentID, IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateProduct inserts an active product with the given stock and no ledger rows
func CreateProduct(t *testing.T, db *gorm.DB, name string, brandID, categoryID uuid.UUID, stock int, price string) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:        name,
		CostPrice:   decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		RetailPrice: decimal.RequireFromString(price),
		Stock:       stock,
		MinStock:    model.DefaultMinStock,
		IsActive:    true,
		BrandID:     brandID,
		CategoryID:  categoryID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
