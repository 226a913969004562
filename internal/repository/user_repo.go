package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
	// FindAll lists users newest first; an empty roles slice means every role
	FindAll(ctx context.Context, roles ...model.Role) ([]model.User, error)
	Count(ctx context.Context, roles ...model.Role) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Create(user).Error
}

// Delete removes the user together with their settings and work sessions.
// Activity rows are kept and lose the user reference.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Model(&model.Activity{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&model.UserSettings{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&model.WorkSession{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) FindAll(ctx context.Context, roles ...model.Role) ([]model.User, error) {
	var users []model.User
	query := conn(ctx, r.db).Order("created_at DESC")
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Count(ctx context.Context, roles ...model.Role) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&model.User{})
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}
	err := query.Count(&count).Error
	return count, err
}
