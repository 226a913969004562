package service

import (
	"context"
	"testing"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_RoleMatrix(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		actor   model.Role
		target  model.Role
		allowed bool
	}{
		{model.RoleCashier, model.RoleCashier, false},
		{model.RoleCashier, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleCashier, true},
		{model.RoleAdmin, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleMainAdmin, false},
		{model.RoleMainAdmin, model.RoleCashier, true},
		{model.RoleMainAdmin, model.RoleAdmin, true},
		{model.RoleMainAdmin, model.RoleMainAdmin, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actor)+" creates "+string(tt.target), func(t *testing.T) {
			e := newTestEnv(t)
			actor := map[model.Role]*model.User{
				model.RoleCashier:   e.cashier,
				model.RoleAdmin:     e.admin,
				model.RoleMainAdmin: e.mainAdmin,
			}[tt.actor]

			user, err := e.users.CreateUser(ctx, principal(actor), &CreateUserRequest{
				Name:     "New Person",
				Email:    "New.Person@Vapestore.test",
				Password: "secret123",
				Role:     tt.target,
			})
			if !tt.allowed {
				assert.True(t, apperror.IsForbidden(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, user.Email)
			assert.Equal(t, "new.person@vapestore.test", *user.Email)
			assert.Equal(t, tt.target, user.Role)
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	_, err := e.users.CreateUser(ctx, principal(e.admin), &CreateUserRequest{
		Name:     "Copy",
		Email:    "CASHIER@vapestore.test",
		Password: "secret123",
		Role:     model.RoleCashier,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestListUsers_Scope(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	_, err := e.users.ListUsers(ctx, principal(e.cashier))
	assert.True(t, apperror.IsForbidden(err))

	visible, err := e.users.ListUsers(ctx, principal(e.admin))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, e.cashier.ID, visible[0].ID)

	all, err := e.users.ListUsers(ctx, principal(e.mainAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	counts := map[model.Role]int64{}
	for _, u := range []*model.User{e.cashier, e.admin, e.mainAdmin} {
		data, err := e.dashboard.GetDashboardData(ctx, principal(u))
		require.NoError(t, err)
		counts[u.Role] = data.UsersCount
	}
	assert.Equal(t, map[model.Role]int64{model.RoleCashier: 0, model.RoleAdmin: 1, model.RoleMainAdmin: 3}, counts)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades settings and sessions and keeps activity text", func(t *testing.T) {
		e := newTestEnv(t)
		e.atHour(12)

		_, err := e.shifts.StartShift(ctx, principal(e.cashier))
		require.NoError(t, err)
		_, err = e.shifts.EndShift(ctx, principal(e.cashier), &EndShiftRequest{Hours: decimal.NewFromInt(6)})
		require.NoError(t, err)

		require.NoError(t, e.users.DeleteUser(ctx, principal(e.admin), e.cashier.ID))

		var users, settings, sessions int64
		require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", e.cashier.ID).Count(&users).Error)
		require.NoError(t, e.db.Model(&model.UserSettings{}).Where("user_id = ?", e.cashier.ID).Count(&settings).Error)
		require.NoError(t, e.db.Model(&model.WorkSession{}).Where("user_id = ?", e.cashier.ID).Count(&sessions).Error)
		assert.Zero(t, users)
		assert.Zero(t, settings)
		assert.Zero(t, sessions)

		var shiftLog []model.Activity
		require.NoError(t, e.db.Where("action IN ?", []string{model.ActionStartShift, model.ActionEndShift}).Find(&shiftLog).Error)
		require.Len(t, shiftLog, 2)
		for _, a := range shiftLog {
			assert.Nil(t, a.UserID)
			assert.NotEmpty(t, a.Details)
		}
	})

	t.Run("matrix applies to the target", func(t *testing.T) {
		e := newTestEnv(t)

		assert.True(t, apperror.IsForbidden(e.users.DeleteUser(ctx, principal(e.admin), e.admin.ID)))
		assert.True(t, apperror.IsForbidden(e.users.DeleteUser(ctx, principal(e.admin), e.mainAdmin.ID)))
		assert.True(t, apperror.IsForbidden(e.users.DeleteUser(ctx, principal(e.cashier), e.cashier.ID)))
		require.NoError(t, e.users.DeleteUser(ctx, principal(e.mainAdmin), e.admin.ID))
	})

	t.Run("unknown target", func(t *testing.T) {
		e := newTestEnv(t)
		assert.True(t, apperror.IsNotFound(e.users.DeleteUser(ctx, principal(e.mainAdmin), uuid.New())))
	})
}

func TestListRoles(t *testing.T) {
	e := newTestEnv(t)

	roles := e.users.ListRoles()
	require.Len(t, roles, 3)
	assert.Equal(t, model.RoleCashier, roles[0].Code)
	assert.Equal(t, model.RoleMainAdmin, roles[2].Code)
}

func TestEnsureMainAdmin(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	require.NoError(t, e.users.EnsureMainAdmin(ctx, "Boss@Vapestore.test", "admin123"))
	require.NoError(t, e.users.EnsureMainAdmin(ctx, "boss@vapestore.test", "other-password"))

	resp, err := e.auth.Login(ctx, "boss@vapestore.test", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMainAdmin, resp.User.Role)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	t.Run("email is case-insensitive and the token authenticates", func(t *testing.T) {
		resp, err := e.auth.Login(ctx, "Cashier@VapeStore.test", "secret123")
		require.NoError(t, err)
		assert.Equal(t, e.cashier.ID, resp.User.ID)

		user, err := e.auth.Authenticate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, e.cashier.ID, user.ID)
	})

	t.Run("a second login revokes the first token", func(t *testing.T) {
		first, err := e.auth.Login(ctx, "manager@vapestore.test", "secret123")
		require.NoError(t, err)
		_, err = e.auth.Login(ctx, "manager@vapestore.test", "secret123")
		require.NoError(t, err)

		_, err = e.auth.Authenticate(ctx, first.Token)
		assert.True(t, apperror.IsUnauthenticated(err))
	})

	t.Run("failures", func(t *testing.T) {
		external := &model.User{Name: "SSO", Email: "sso@vapestore.test", Role: model.RoleCashier}
		require.NoError(t, e.db.Create(external).Error)

		tests := []struct {
			name, email, password, message string
		}{
			{"unknown email", "nobody@vapestore.test", "secret123", "User not found"},
			{"external account", "sso@vapestore.test", "secret123", "Account uses external authentication"},
			{"wrong password", "cashier@vapestore.test", "wrong", "Invalid password"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := e.auth.Login(ctx, tt.email, tt.password)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeUnauthenticated, appErr.Code)
				assert.Equal(t, tt.message, appErr.Message)
			})
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := e.auth.Authenticate(ctx, "not-a-token")
		assert.True(t, apperror.IsUnauthenticated(err))
	})
}

func TestResetPasswordAndCurrentUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	assert.True(t, apperror.IsValidation(e.auth.ResetPassword(ctx, "cashier@vapestore.test", "secret123", "123")))
	assert.True(t, apperror.IsUnauthenticated(e.auth.ResetPassword(ctx, "cashier@vapestore.test", "wrong", "newsecret")))
	require.NoError(t, e.auth.ResetPassword(ctx, "cashier@vapestore.test", "secret123", "newsecret"))

	_, err := e.auth.Login(ctx, "cashier@vapestore.test", "newsecret")
	require.NoError(t, err)

	me, err := e.auth.CurrentUser(ctx, principal(e.cashier))
	require.NoError(t, err)
	assert.Equal(t, "Cashier", me.Name)

	ghost := testutil.CreateUser(t, e.db, "Ghost", "ghost@vapestore.test", model.RoleCashier)
	require.NoError(t, e.users.DeleteUser(ctx, principal(e.admin), ghost.ID))
	_, err = e.auth.CurrentUser(ctx, principal(ghost))
	assert.True(t, apperror.IsUnauthenticated(err))
}
