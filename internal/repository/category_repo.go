package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	// FindActive returns every active category as a flat list ordered by sortOrder
	FindActive(ctx context.Context) ([]model.Category, error)
	CountActiveTopLevel(ctx context.Context) (int64, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(category).Error
}

func (r *categoryRepo) Update(ctx context.Context, category *model.Category) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(category).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := conn(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := conn(ctx, r.db).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindActive(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) CountActiveTopLevel(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Category{}).
		Where("is_active = ? AND parent_id IS NULL", true).
		Count(&count).Error
	return count, err
}
