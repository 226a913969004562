package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale_TotalsAndStock(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	p1 := e.newProduct(t, "Pod A", 10, "10")
	p2 := e.newProduct(t, "Pod B", 10, "5")

	sale, err := e.sales.CreateSale(ctx, principal(e.cashier), &CreateSaleRequest{
		Items: []SaleItemInput{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
		},
		Discount: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	decimalEqual(t, "25", sale.TotalAmount)
	decimalEqual(t, "3", sale.Discount)
	decimalEqual(t, "22", sale.FinalAmount)
	assert.Equal(t, model.PaymentCash, sale.PaymentMethod)
	assert.Equal(t, e.cashier.ID, sale.UserID)
	require.Len(t, sale.Items, 2)
	for _, item := range sale.Items {
		require.NotNil(t, item.Product)
	}

	assert.Equal(t, 8, e.stockOf(t, p1.ID))
	assert.Equal(t, 9, e.stockOf(t, p2.ID))
	e.requireLedgerConsistent(t, p1.ID)
	e.requireLedgerConsistent(t, p2.ID)

	var movements []model.StockMovement
	require.NoError(t, e.db.Where("sale_id = ?", sale.ID).Find(&movements).Error)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, model.MovementOut, m.Type)
		assert.Equal(t, model.ReasonSale, m.Reason)
	}
}

func TestCreateSale_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	p1 := e.newProduct(t, "Pod A", 10, "10")
	p2 := e.newProduct(t, "Pod B", 1, "5")

	_, err := e.sales.CreateSale(ctx, principal(e.cashier), &CreateSaleRequest{
		Items: []SaleItemInput{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: p2.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	assert.Equal(t, 10, e.stockOf(t, p1.ID))
	assert.Equal(t, 1, e.stockOf(t, p2.ID))

	var sales, items int64
	require.NoError(t, e.db.Model(&model.Sale{}).Count(&sales).Error)
	require.NoError(t, e.db.Model(&model.SaleItem{}).Count(&items).Error)
	assert.Zero(t, sales)
	assert.Zero(t, items)
	e.requireLedgerConsistent(t, p1.ID)
	e.requireLedgerConsistent(t, p2.ID)
}

func TestCreateSale_Validation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	product := e.newProduct(t, "Pod A", 10, "10")

	tests := []struct {
		name string
		req  *CreateSaleRequest
	}{
		{"no items", &CreateSaleRequest{}},
		{"zero quantity", &CreateSaleRequest{Items: []SaleItemInput{{ProductID: product.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(1)}}}},
		{"negative price", &CreateSaleRequest{Items: []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}}},
		{"negative discount", &CreateSaleRequest{Items: []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, Discount: decimal.NewFromInt(-2)}},
		{"unknown payment method", &CreateSaleRequest{Items: []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, PaymentMethod: "BARTER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sales.CreateSale(ctx, principal(e.cashier), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	assert.Equal(t, 10, e.stockOf(t, product.ID))
}

func TestCreateQuickSale(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to one unit at catalog price", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Pod A", 4, "12.50")

		sale, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{
			ProductID:     product.ID,
			PaymentMethod: model.PaymentCard,
		})
		require.NoError(t, err)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, 1, sale.Items[0].Quantity)
		decimalEqual(t, "12.5", sale.Items[0].UnitPrice)
		decimalEqual(t, "12.5", sale.FinalAmount)
		assert.Equal(t, model.PaymentCard, sale.PaymentMethod)
		assert.Equal(t, 3, e.stockOf(t, product.ID))
	})

	t.Run("insufficient stock leaves stock unchanged", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Pod A", 2, "10")

		_, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: product.ID, Quantity: 3})
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
		assert.Equal(t, 2, e.stockOf(t, product.ID))
		e.requireLedgerConsistent(t, product.ID)
	})

	t.Run("discount may exceed the total", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Pod A", 2, "10")

		sale, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: product.ID, Discount: decimal.NewFromInt(15)})
		require.NoError(t, err)
		decimalEqual(t, "-5", sale.FinalAmount)
	})

	t.Run("unknown product", func(t *testing.T) {
		e := newTestEnv(t)

		_, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: uuid.New()})
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestCreateQuickSale_ConcurrentNoOversell(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	product := e.newProduct(t, "Last units", 5, "10")

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: product.ID})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.IsInsufficientStock(err), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, e.stockOf(t, product.ID))
	e.requireLedgerConsistent(t, product.ID)
}

func TestGetSale_CashierScope(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	product := e.newProduct(t, "Pod A", 10, "10")

	sale, err := e.sales.CreateQuickSale(ctx, principal(e.admin), &QuickSaleRequest{ProductID: product.ID})
	require.NoError(t, err)

	_, err = e.sales.GetSale(ctx, principal(e.cashier), sale.ID)
	assert.True(t, apperror.IsForbidden(err))

	got, err := e.sales.GetSale(ctx, principal(e.mainAdmin), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, got.ID)

	_, err = e.sales.GetSale(ctx, principal(e.admin), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	product := e.newProduct(t, "Pod A", 10, "10")

	_, err := e.sales.CreateQuickSale(ctx, principal(e.admin), &QuickSaleRequest{ProductID: product.ID})
	require.NoError(t, err)
	_, err = e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: product.ID, PaymentMethod: model.PaymentSBP})
	require.NoError(t, err)

	own, err := e.sales.ListSales(ctx, principal(e.cashier), &ListSalesRequest{UserID: &e.admin.ID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, e.cashier.ID, own[0].UserID)

	all, err := e.sales.ListSales(ctx, principal(e.admin), &ListSalesRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sbp, err := e.sales.ListSales(ctx, principal(e.admin), &ListSalesRequest{PaymentMethod: model.PaymentSBP})
	require.NoError(t, err)
	require.Len(t, sbp, 1)
	assert.Equal(t, model.PaymentSBP, sbp[0].PaymentMethod)

	past := time.Now().Add(-48 * time.Hour)
	none, err := e.sales.ListSales(ctx, principal(e.admin), &ListSalesRequest{To: &past})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSalesAnalytics(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	popular := e.newProduct(t, "Popular", 20, "10")
	niche := e.newProduct(t, "Niche", 20, "30")

	_, err := e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: popular.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = e.sales.CreateQuickSale(ctx, principal(e.cashier), &QuickSaleRequest{ProductID: niche.ID, Quantity: 1, PaymentMethod: model.PaymentCard})
	require.NoError(t, err)

	t.Run("cashier is forbidden", func(t *testing.T) {
		_, err := e.sales.GetSalesAnalytics(ctx, principal(e.cashier), nil, nil)
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("totals, ranking and series", func(t *testing.T) {
		analytics, err := e.sales.GetSalesAnalytics(ctx, principal(e.admin), nil, nil)
		require.NoError(t, err)
		decimalEqual(t, "60", analytics.TotalRevenue)
		assert.Equal(t, int64(2), analytics.TotalSales)
		require.Len(t, analytics.TopProducts, 2)
		assert.Equal(t, popular.ID, analytics.TopProducts[0].Product.ID)
		assert.Equal(t, int64(3), analytics.TopProducts[0].TotalQuantity)
		decimalEqual(t, "30", analytics.TopProducts[0].TotalRevenue)
		assert.Len(t, analytics.SalesByDay, 2)
	})

	t.Run("summary defaults to today", func(t *testing.T) {
		summary, err := e.sales.GetSalesSummary(ctx, principal(e.cashier), "")
		require.NoError(t, err)
		assert.Equal(t, PeriodToday, summary.Period)
		assert.Equal(t, int64(2), summary.TotalSales)
		decimalEqual(t, "60", summary.TotalRevenue)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := e.sales.GetSalesSummary(ctx, principal(e.cashier), "decade")
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("payment methods", func(t *testing.T) {
		stats, err := e.sales.GetPaymentMethodStats(ctx, principal(e.cashier), PeriodMonth)
		require.NoError(t, err)
		byMethod := map[model.PaymentMethod]int64{}
		for _, s := range stats {
			byMethod[s.PaymentMethod] = s.Count
		}
		assert.Equal(t, map[model.PaymentMethod]int64{model.PaymentCash: 1, model.PaymentCard: 1}, byMethod)
	})
}
