package service

import (
	"context"
	"errors"
	"strings"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"
	"vapestore-pos/pkg/jwt"
	"vapestore-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	// Authenticate resolves a bearer token to its user, enforcing the single active session
	Authenticate(ctx context.Context, token string) (*model.User, error)
	CurrentUser(ctx context.Context, p Principal) (*model.UserResponse, error)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	// 1. Find user by lower-cased email
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthenticated("User not found")
		}
		return nil, apperror.Wrap(err)
	}

	// 2. Accounts without a password sign in through the external provider
	if user.Password == nil {
		return nil, apperror.NewUnauthenticated("Account uses external authentication")
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, apperror.NewUnauthenticated("Invalid password")
	}

	// 4. Single session: a new token version invalidates older tokens
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, apperror.Wrap(err)
	}

	// 5. Generate JWT token with TokenVersion
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, string(user.Role), version)
	if err != nil {
		return nil, apperror.NewIntegrity(err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperror.NewValidation("New password must be at least 6 characters")
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return notFound(err, "user", email)
	}

	// 2. Verify old password
	if !user.CheckPassword(oldPassword) {
		return apperror.NewUnauthenticated("Current password is incorrect")
	}

	// 3. Set new password
	if err := user.SetPassword(newPassword); err != nil {
		return apperror.NewIntegrity(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, *user.Password); err != nil {
		return apperror.Wrap(err)
	}

	// 4. Invalidate existing sessions
	return apperror.Wrap(s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString()))
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperror.NewUnauthenticated("Invalid or expired token")
	}

	// Check strict session against DB
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthenticated("User not found")
		}
		return nil, apperror.Wrap(err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, apperror.NewUnauthenticated("Session expired (logged in on another device)")
	}

	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, p Principal) (*model.UserResponse, error) {
	user, err := activeSubject(ctx, s.userRepo, p)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}
