package service

import (
	"context"
	"errors"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is the acting user, resolved once per request by the auth middleware
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   model.Role
}

// Authenticated reports whether the principal carries a known user
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil && p.Role.Valid()
}

func requireAuthenticated(p Principal) error {
	if !p.Authenticated() {
		return apperror.NewUnauthenticated("Not authenticated")
	}
	return nil
}

// requireRole checks the principal is at least min in the role lattice
func requireRole(p Principal, min model.Role) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if !p.Role.AtLeast(min) {
		return apperror.NewForbidden("Insufficient permissions").
			WithDetail("required_role", min)
	}
	return nil
}

// canManageRole decides whether actor may create or delete a user holding target.
// MAIN_ADMIN accounts are never managed through the API, ADMIN accounts only by
// MAIN_ADMIN, and CASHIER accounts by anyone above CASHIER.
func canManageRole(actor, target model.Role) bool {
	switch target {
	case model.RoleMainAdmin:
		return false
	case model.RoleAdmin:
		return actor == model.RoleMainAdmin
	case model.RoleCashier:
		return actor.AtLeast(model.RoleAdmin)
	default:
		return false
	}
}

// visibleRoles lists the roles whose accounts actor may list and count.
// A nil slice means every role; ok is false when actor may see none.
func visibleRoles(actor model.Role) (roles []model.Role, ok bool) {
	switch actor {
	case model.RoleMainAdmin:
		return nil, true
	case model.RoleAdmin:
		return []model.Role{model.RoleCashier}, true
	default:
		return nil, false
	}
}

// validate runs struct tags and turns the first failure into a validation error
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		appErr := apperror.NewValidation("Validation failed: field '" + first.FailedField + "' failed on '" + first.Tag + "'")
		for _, e := range errs {
			appErr.WithDetail(e.FailedField, e.Tag)
		}
		return appErr
	}
	return nil
}

// notFound maps gorm's missing-row error and wraps everything else
func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(entity, id)
	}
	return apperror.Wrap(err)
}

// activeSubject reloads the principal's user row so deleted accounts lose access
func activeSubject(ctx context.Context, users interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}, p Principal) (*model.User, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	user, err := users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthenticated("User not found")
		}
		return nil, apperror.Wrap(err)
	}
	return user, nil
}
