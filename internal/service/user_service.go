package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, p Principal, req *CreateUserRequest) (*model.UserResponse, error)
	ListUsers(ctx context.Context, p Principal) ([]model.UserResponse, error)
	DeleteUser(ctx context.Context, p Principal, userID uuid.UUID) error
	ListRoles() []model.RoleDescriptor
	// EnsureMainAdmin creates the bootstrap MAIN_ADMIN account when it does not exist
	EnsureMainAdmin(ctx context.Context, email, password string) error
}

type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"required,oneof=CASHIER ADMIN MAIN_ADMIN"`
}

type userService struct {
	userRepo repository.UserRepository
	txm      *repository.TxManager
	recorder *activity.Recorder
}

func NewUserService(userRepo repository.UserRepository, txm *repository.TxManager, recorder *activity.Recorder) UserService {
	return &userService{
		userRepo: userRepo,
		txm:      txm,
		recorder: recorder,
	}
}

func (s *userService) CreateUser(ctx context.Context, p Principal, req *CreateUserRequest) (*model.UserResponse, error) {
	// 1. Check permissions before looking at the payload
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if !canManageRole(p.Role, req.Role) {
		return nil, apperror.NewForbidden("Insufficient permissions").WithDetail("role", req.Role)
	}

	// 2. Validate request
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	// 3. Check if email already exists
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.NewDuplicate("user", "email", req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(err)
	}

	// 4. Hash password and save
	user := &model.User{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		CreatedBy: activity.Ref(p.UserID),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.NewIntegrity(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.NewDuplicate("user", "email", req.Email)
		}
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionCreateUser,
		Details: fmt.Sprintf("Created user %s with role %s", user.Name, user.Role),
		UserID:  activity.Ref(p.UserID),
	})

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, p Principal) ([]model.UserResponse, error) {
	if err := requireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	roles, _ := visibleRoles(p.Role)
	users, err := s.userRepo.FindAll(ctx, roles...)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	resp := make([]model.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, users[i].ToResponse())
	}
	return resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, p Principal, userID uuid.UUID) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}

	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, "user", userID)
	}

	// Same matrix as creation, evaluated against the target's role
	if !canManageRole(p.Role, target.Role) {
		return apperror.NewForbidden("Insufficient permissions").WithDetail("role", target.Role)
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return notFound(err, "user", userID)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionDeleteUser,
		Details: fmt.Sprintf("Deleted user %s with role %s", target.Name, target.Role),
		UserID:  activity.Ref(p.UserID),
	})
	return nil
}

func (s *userService) ListRoles() []model.RoleDescriptor {
	roles := make([]model.RoleDescriptor, len(model.DefaultRoles))
	copy(roles, model.DefaultRoles)
	return roles
}

func (s *userService) EnsureMainAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &model.User{
		Name:  "Main Administrator",
		Email: email,
		Role:  model.RoleMainAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info(ctx, "main admin created", "email", email)
	return nil
}
