package repository

import (
	"context"
	"time"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	// FindByProduct returns the latest movements, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	// Balance is Σ IN − Σ OUT for the product
	Balance(ctx context.Context, productID uuid.UUID) (int, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]DailyMovement, error)
}

// DailyMovement is one point of the inbound/outbound chart
type DailyMovement struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return conn(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepo) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) Balance(ctx context.Context, productID uuid.UUID) (int, error) {
	var balance int
	err := conn(ctx, r.db).Model(&model.StockMovement{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0)", model.MovementIn).
		Where("product_id = ?", productID).
		Scan(&balance).Error
	return balance, err
}

func (r *stockMovementRepo) DailyTotals(ctx context.Context, from, to time.Time) ([]DailyMovement, error) {
	results := []DailyMovement{}

	// Aggregate movements per day
	rows, err := conn(ctx, r.db).Model(&model.StockMovement{}).
		Select(`
			CAST(DATE(created_at) AS TEXT) as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyMovement
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
