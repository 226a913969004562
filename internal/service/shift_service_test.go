package service

import (
	"context"
	"testing"
	"time"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBusinessRule(t *testing.T, err error, message string) {
	t.Helper()

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected an app error, got %v", err)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestShiftLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.atHour(10)
	cashier := principal(e.cashier)

	active, err := e.shifts.GetActiveShift(ctx, cashier)
	require.NoError(t, err)
	assert.Nil(t, active)

	started, err := e.shifts.StartShift(ctx, cashier)
	require.NoError(t, err)
	decimalEqual(t, "200", started.HourlyRate)
	assert.True(t, e.now.Equal(started.StartTime))

	_, err = e.shifts.StartShift(ctx, cashier)
	requireBusinessRule(t, err, "You already have an active shift today")

	active, err = e.shifts.GetActiveShift(ctx, cashier)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, started.ShiftID, active.ID)

	// A rate change after start does not touch the running shift
	_, err = e.shifts.UpdateUserHourlyRate(ctx, principal(e.admin), e.cashier.ID, &HourlyRateRequest{HourlyRate: decimal.NewFromInt(300)})
	require.NoError(t, err)

	ended, err := e.shifts.EndShift(ctx, cashier, &EndShiftRequest{Hours: decimal.RequireFromString("7.5")})
	require.NoError(t, err)
	decimalEqual(t, "7.5", ended.Hours)
	decimalEqual(t, "1500", ended.TotalPay)

	active, err = e.shifts.GetActiveShift(ctx, cashier)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = e.shifts.StartShift(ctx, cashier)
	requireBusinessRule(t, err, "Today's shift is already completed")

	_, err = e.shifts.EndShift(ctx, cashier, &EndShiftRequest{Hours: decimal.NewFromInt(1)})
	requireBusinessRule(t, err, "No active shift to end")
}

func TestStartShift_Cutoff(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	e.now = time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)
	_, err := e.shifts.StartShift(ctx, principal(e.cashier))
	requireBusinessRule(t, err, "A shift cannot be started after 23:00")

	e.now = time.Date(2025, 3, 14, 22, 59, 0, 0, time.UTC)
	_, err = e.shifts.StartShift(ctx, principal(e.cashier))
	require.NoError(t, err)
}

func TestEndShift(t *testing.T) {
	ctx := context.Background()

	t.Run("without a start", func(t *testing.T) {
		e := newTestEnv(t)
		e.atHour(18)

		_, err := e.shifts.EndShift(ctx, principal(e.cashier), &EndShiftRequest{Hours: decimal.NewFromInt(8)})
		requireBusinessRule(t, err, "No active shift to end")
	})

	t.Run("hours must be positive", func(t *testing.T) {
		e := newTestEnv(t)
		e.atHour(9)
		_, err := e.shifts.StartShift(ctx, principal(e.cashier))
		require.NoError(t, err)

		_, err = e.shifts.EndShift(ctx, principal(e.cashier), &EndShiftRequest{Hours: decimal.Zero})
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))

		active, err := e.shifts.GetActiveShift(ctx, principal(e.cashier))
		require.NoError(t, err)
		assert.NotNil(t, active)
	})
}

func TestWorkSessions(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.atHour(12)
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	created, err := e.shifts.CreateWorkSession(ctx, principal(e.cashier), &WorkSessionRequest{Date: day, Hours: decimal.NewFromInt(4)})
	require.NoError(t, err)
	decimalEqual(t, "800", created.TotalPay)

	// Same day again replaces the row
	updated, err := e.shifts.CreateWorkSession(ctx, principal(e.cashier), &WorkSessionRequest{Date: day, Hours: decimal.NewFromInt(6)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	decimalEqual(t, "1200", updated.TotalPay)

	_, err = e.shifts.CreateWorkSession(ctx, principal(e.admin), &WorkSessionRequest{Date: day.AddDate(0, 0, 1), Hours: decimal.NewFromInt(5)})
	require.NoError(t, err)

	var actions []string
	require.NoError(t, e.db.Model(&model.Activity{}).
		Where("action IN ?", []string{model.ActionCreateWorkSession, model.ActionUpdateWorkSession}).
		Order("created_at ASC").Pluck("action", &actions).Error)
	assert.Equal(t, []string{model.ActionCreateWorkSession, model.ActionUpdateWorkSession, model.ActionCreateWorkSession}, actions)

	t.Run("cashier only sees own sessions", func(t *testing.T) {
		sessions, err := e.shifts.ListWorkSessions(ctx, principal(e.cashier), &ListWorkSessionsRequest{UserID: &e.admin.ID})
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, e.cashier.ID, sessions[0].UserID)
	})

	t.Run("admin can read another user", func(t *testing.T) {
		sessions, err := e.shifts.ListWorkSessions(ctx, principal(e.admin), &ListWorkSessionsRequest{UserID: &e.cashier.ID})
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		require.NotNil(t, sessions[0].User)
		assert.Equal(t, "Cashier", sessions[0].User.Name)
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		from := day.Add(15 * time.Hour)
		sessions, err := e.shifts.ListWorkSessions(ctx, principal(e.admin), &ListWorkSessionsRequest{UserID: &e.cashier.ID, StartDate: &from, EndDate: &from})
		require.NoError(t, err)
		assert.Len(t, sessions, 1)

		later := day.AddDate(0, 0, 2)
		sessions, err = e.shifts.ListWorkSessions(ctx, principal(e.admin), &ListWorkSessionsRequest{UserID: &e.cashier.ID, StartDate: &later})
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("hours are bounded", func(t *testing.T) {
		_, err := e.shifts.CreateWorkSession(ctx, principal(e.cashier), &WorkSessionRequest{Date: day, Hours: decimal.NewFromInt(25)})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestUserSettings(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	settings, err := e.shifts.GetUserSettings(ctx, principal(e.cashier), nil)
	require.NoError(t, err)
	assert.Equal(t, e.cashier.ID, settings.UserID)
	decimalEqual(t, "200", settings.HourlyRate)

	// Reads initialize the row exactly once
	again, err := e.shifts.GetUserSettings(ctx, principal(e.cashier), &e.cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)

	_, err = e.shifts.GetUserSettings(ctx, principal(e.cashier), &e.admin.ID)
	assert.True(t, apperror.IsForbidden(err))

	_, err = e.shifts.UpdateUserHourlyRate(ctx, principal(e.cashier), e.cashier.ID, &HourlyRateRequest{HourlyRate: decimal.NewFromInt(999)})
	assert.True(t, apperror.IsForbidden(err))

	_, err = e.shifts.UpdateUserHourlyRate(ctx, principal(e.admin), e.cashier.ID, &HourlyRateRequest{HourlyRate: decimal.NewFromInt(-1)})
	assert.True(t, apperror.IsValidation(err))

	_, err = e.shifts.UpdateUserHourlyRate(ctx, principal(e.admin), uuid.New(), &HourlyRateRequest{HourlyRate: decimal.NewFromInt(250)})
	assert.True(t, apperror.IsNotFound(err))

	updated, err := e.shifts.UpdateUserHourlyRate(ctx, principal(e.admin), e.cashier.ID, &HourlyRateRequest{HourlyRate: decimal.NewFromInt(250)})
	require.NoError(t, err)
	decimalEqual(t, "250", updated.HourlyRate)

	read, err := e.shifts.GetUserSettings(ctx, principal(e.admin), &e.cashier.ID)
	require.NoError(t, err)
	decimalEqual(t, "250", read.HourlyRate)

	var rows int64
	require.NoError(t, e.db.Model(&model.UserSettings{}).Where("user_id = ?", e.cashier.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
