package service

import (
	"context"
	"testing"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStock(t *testing.T) {
	ctx := context.Background()

	t.Run("signed quantity picks the movement direction", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Lost Mary", 10, "15")

		res, err := e.stock.UpdateStock(ctx, principal(e.cashier), product.ID, &UpdateStockRequest{Quantity: 7, Reason: model.ReasonRestock})
		require.NoError(t, err)
		assert.Equal(t, 17, res.Product.Stock)
		assert.Equal(t, model.MovementIn, res.Movement.Type)
		assert.Equal(t, 7, res.Movement.Quantity)

		res, err = e.stock.UpdateStock(ctx, principal(e.cashier), product.ID, &UpdateStockRequest{Quantity: -4, Reason: "DAMAGED", Notes: "dropped"})
		require.NoError(t, err)
		assert.Equal(t, 13, res.Product.Stock)
		assert.Equal(t, model.MovementOut, res.Movement.Type)
		assert.Equal(t, 4, res.Movement.Quantity)

		e.requireLedgerConsistent(t, product.ID)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Lost Mary", 10, "15")

		_, err := e.stock.UpdateStock(ctx, principal(e.cashier), product.ID, &UpdateStockRequest{Quantity: 0, Reason: model.ReasonRestock})
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Equal(t, 10, e.stockOf(t, product.ID))
	})

	t.Run("removing more than on hand fails and writes nothing", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Lost Mary", 3, "15")

		_, err := e.stock.UpdateStock(ctx, principal(e.cashier), product.ID, &UpdateStockRequest{Quantity: -5, Reason: "DAMAGED"})
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
		assert.Equal(t, 3, e.stockOf(t, product.ID))

		movements, err := e.stock.GetStockMovements(ctx, product.ID)
		require.NoError(t, err)
		assert.Len(t, movements, 1)
		e.requireLedgerConsistent(t, product.ID)
	})

	t.Run("unknown product", func(t *testing.T) {
		e := newTestEnv(t)

		_, err := e.stock.UpdateStock(ctx, principal(e.cashier), uuid.New(), &UpdateStockRequest{Quantity: 2, Reason: model.ReasonRestock})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("requires a principal", func(t *testing.T) {
		e := newTestEnv(t)
		product := e.newProduct(t, "Lost Mary", 3, "15")

		_, err := e.stock.UpdateStock(ctx, Principal{}, product.ID, &UpdateStockRequest{Quantity: 2, Reason: model.ReasonRestock})
		assert.True(t, apperror.IsUnauthenticated(err))
	})
}

func TestGetStockMovements_NewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	product := e.newProduct(t, "Lost Mary", 0, "15")

	for i := 1; i <= 25; i++ {
		_, err := e.stock.UpdateStock(ctx, principal(e.admin), product.ID, &UpdateStockRequest{Quantity: i, Reason: model.ReasonRestock})
		require.NoError(t, err)
	}

	movements, err := e.stock.GetStockMovements(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, movements, 20)
	for i := 1; i < len(movements); i++ {
		assert.False(t, movements[i].CreatedAt.After(movements[i-1].CreatedAt))
	}
	e.requireLedgerConsistent(t, product.ID)
}

func TestGetLowStockProducts(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	empty := e.newProduct(t, "Empty", 0, "10")
	atMin := e.newProduct(t, "At minimum", 5, "10")
	plenty := e.newProduct(t, "Plenty", 50, "10")
	inactive := testutil.CreateProduct(t, e.db, "Retired", e.brand.ID, e.category.ID, 1, "10")
	require.NoError(t, e.catalog.DeleteProduct(ctx, principal(e.admin), inactive.ID))

	low, err := e.stock.GetLowStockProducts(ctx)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(low))
	for _, p := range low {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uuid.UUID{empty.ID, atMin.ID}, ids)
	assert.NotContains(t, ids, plenty.ID)

	data, err := e.dashboard.GetDashboardData(ctx, principal(e.admin))
	require.NoError(t, err)
	assert.Equal(t, int64(len(low)), data.LowStockCount)
}
