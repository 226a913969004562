package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	Update(ctx context.Context, brand *model.Brand) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	FindByName(ctx context.Context, name string) (*model.Brand, error)
	FindActive(ctx context.Context) ([]model.Brand, error)
}

type brandRepo struct {
	db *gorm.DB
}

func NewBrandRepo(db *gorm.DB) BrandRepository {
	return &brandRepo{db}
}

func (r *brandRepo) Create(ctx context.Context, brand *model.Brand) error {
	return conn(ctx, r.db).Create(brand).Error
}

func (r *brandRepo) Update(ctx context.Context, brand *model.Brand) error {
	return conn(ctx, r.db).Save(brand).Error
}

func (r *brandRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var brand model.Brand
	if err := conn(ctx, r.db).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) FindByName(ctx context.Context, name string) (*model.Brand, error) {
	var brand model.Brand
	if err := conn(ctx, r.db).Where("name = ?", name).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepo) FindActive(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	err := conn(ctx, r.db).Where("is_active = ?", true).Order("name ASC").Find(&brands).Error
	return brands, err
}
