package service

import (
	"context"
	"testing"
	"time"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/internal/storage"
	"vapestore-pos/internal/testutil"
	"vapestore-pos/pkg/jwt"
	"vapestore-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every service over one in-memory database
type testEnv struct {
	db  *gorm.DB
	now time.Time

	auth      AuthService
	users     UserService
	catalog   CatalogService
	stock     StockService
	sales     SalesService
	dashboard DashboardService
	shifts    ShiftService

	mainAdmin *model.User
	admin     *model.User
	cashier   *model.User
	brand     *model.Brand
	category  *model.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	e := &testEnv{db: db, now: time.Now().UTC()}
	clock := Clock{Now: func() time.Time { return e.now }, Location: time.UTC}

	userRepo := repository.NewUserRepo(db)
	brandRepo := repository.NewBrandRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	activityRepo := repository.NewActivityRepo(db)
	sessionRepo := repository.NewWorkSessionRepo(db)
	settingsRepo := repository.NewUserSettingsRepo(db)
	txm := repository.NewTxManager(db)
	recorder := activity.NewRecorder(activityRepo, nil, logger.NewNop())

	e.auth = NewAuthService(userRepo, jwt.NewManager("test-secret-test-secret", time.Hour))
	e.users = NewUserService(userRepo, txm, recorder)
	e.catalog = NewCatalogService(brandRepo, categoryRepo, productRepo, movementRepo, txm,
		storage.NewDiskUploader(t.TempDir(), "http://localhost:3000"), recorder)
	e.stock = NewStockService(productRepo, movementRepo, txm, recorder)
	e.sales = NewSalesService(saleRepo, productRepo, movementRepo, txm, recorder, clock)
	e.dashboard = NewDashboardService(productRepo, categoryRepo, userRepo, saleRepo, movementRepo, activityRepo, clock)
	e.shifts = NewShiftService(sessionRepo, settingsRepo, userRepo, txm, recorder, clock, ShiftPolicy{
		CutoffHour:  23,
		DefaultRate: model.DefaultHourlyRate,
	})

	e.mainAdmin = testutil.CreateUser(t, db, "Owner", "owner@vapestore.test", model.RoleMainAdmin)
	e.admin = testutil.CreateUser(t, db, "Manager", "manager@vapestore.test", model.RoleAdmin)
	e.cashier = testutil.CreateUser(t, db, "Cashier", "cashier@vapestore.test", model.RoleCashier)
	e.brand = testutil.CreateBrand(t, db, "Elf Bar")
	e.category = testutil.CreateCategory(t, db, "Disposables", nil)
	return e
}

func principal(u *model.User) Principal {
	return Principal{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// newProduct creates a product through the catalog so its opening movement exists
func (e *testEnv) newProduct(t *testing.T, name string, stock int, price string) *model.Product {
	t.Helper()

	product, err := e.catalog.CreateProduct(context.Background(), principal(e.cashier), &CreateProductRequest{
		Name:        name,
		CostPrice:   decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		RetailPrice: decimal.RequireFromString(price),
		Stock:       stock,
		BrandID:     e.brand.ID,
		CategoryID:  e.category.ID,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()

	var product model.Product
	require.NoError(t, e.db.First(&product, "id = ?", id).Error)
	return product.Stock
}

// requireLedgerConsistent checks stock equals the movement balance
func (e *testEnv) requireLedgerConsistent(t *testing.T, id uuid.UUID) {
	t.Helper()

	balance, err := e.stock.GetLedgerBalance(context.Background(), id)
	require.NoError(t, err)
	require.True(t, balance.Consistent, "stock %d, ledger %d", balance.Stock, balance.LedgerBalance)
}

func decimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

// atHour pins the clock to today's h:00 UTC
func (e *testEnv) atHour(h int) {
	y, m, d := time.Now().UTC().Date()
	e.now = time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}
