package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lowStockPredicate = "(stock <= min_stock OR stock = 0)"

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// Update writes every column except stock, which only moves through the ledger
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindActive(ctx context.Context) ([]model.Product, error)
	// FindAvailable returns active in-stock products, optionally limited to the given categories
	FindAvailable(ctx context.Context, categoryIDs ...uuid.UUID) ([]model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	CountActive(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)

	// DecrementStock subtracts qty only if enough stock remains. It reports
	// false, without error, when the guard fails.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return conn(ctx, r.db).Omit("stock", clause.Associations).Save(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db).Preload("Brand").Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Preload("Brand").Preload("Category").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindAvailable(ctx context.Context, categoryIDs ...uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	query := conn(ctx, r.db).Preload("Brand").Preload("Category").
		Where("is_active = ? AND stock > 0", true)
	if len(categoryIDs) > 0 {
		query = query.Where("category_id IN ?", categoryIDs)
	}
	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Preload("Brand").Preload("Category").
		Where("is_active = ?", true).
		Where(lowStockPredicate).
		Order("stock ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Product{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *productRepo) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Product{}).
		Where("is_active = ?", true).
		Where(lowStockPredicate).
		Count(&count).Error
	return count, err
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
