package repository

import (
	"context"
	"time"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Period is a half-open [From, To) window over created_at; nil bounds are open
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) apply(query *gorm.DB, column string) *gorm.DB {
	if p.From != nil {
		query = query.Where(column+" >= ?", p.From.UTC())
	}
	if p.To != nil {
		query = query.Where(column+" < ?", p.To.UTC())
	}
	return query
}

type SaleFilter struct {
	Period
	UserID        *uuid.UUID
	PaymentMethod model.PaymentMethod
	Limit         int
}

// SaleTotals is the revenue and count over a window
type SaleTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Count   int64           `json:"count"`
}

// ProductSales aggregates sold quantity and revenue per product
type ProductSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalePoint is one entry of the per-sale revenue series
type SalePoint struct {
	CreatedAt   time.Time       `json:"created_at"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// PaymentStat is the total and count for one payment method
type PaymentStat struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Total         decimal.Decimal     `json:"total"`
	Count         int64               `json:"count"`
}

type SaleRepository interface {
	// Create inserts the sale and its items. Items must not carry a loaded Product.
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	Totals(ctx context.Context, period Period) (SaleTotals, error)
	TopProducts(ctx context.Context, period Period, limit int) ([]ProductSales, error)
	Series(ctx context.Context, period Period) ([]SalePoint, error)
	PaymentBreakdown(ctx context.Context, period Period) ([]PaymentStat, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return conn(ctx, r.db).Create(sale).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := conn(ctx, r.db).
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	query := filter.apply(conn(ctx, r.db).Preload("Items.Product"), "created_at")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Totals(ctx context.Context, period Period) (SaleTotals, error) {
	var totals SaleTotals
	query := conn(ctx, r.db).Model(&model.Sale{}).
		Select("COALESCE(SUM(final_amount), 0) AS revenue, COUNT(*) AS count")
	err := period.apply(query, "created_at").Scan(&totals).Error
	return totals, err
}

func (r *saleRepo) TopProducts(ctx context.Context, period Period, limit int) ([]ProductSales, error) {
	results := []ProductSales{}
	query := conn(ctx, r.db).Table("sale_items AS si").
		Select("si.product_id AS product_id, p.name AS name, SUM(si.quantity) AS quantity, SUM(si.total_price) AS revenue").
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("JOIN products p ON p.id = si.product_id")
	err := period.apply(query, "s.created_at").
		Group("si.product_id, p.name").
		Order("quantity DESC, name ASC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *saleRepo) Series(ctx context.Context, period Period) ([]SalePoint, error) {
	results := []SalePoint{}
	query := conn(ctx, r.db).Model(&model.Sale{}).Select("created_at, final_amount")
	err := period.apply(query, "created_at").
		Order("created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *saleRepo) PaymentBreakdown(ctx context.Context, period Period) ([]PaymentStat, error) {
	results := []PaymentStat{}
	query := conn(ctx, r.db).Model(&model.Sale{}).
		Select("payment_method, COALESCE(SUM(final_amount), 0) AS total, COUNT(*) AS count")
	err := period.apply(query, "created_at").
		Group("payment_method").
		Order("total DESC").
		Scan(&results).Error
	return results, err
}
