package service

import (
	"context"
	"time"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// recentActivityLimit is the size of the dashboard activity feed
const recentActivityLimit = 10

type DashboardService interface {
	GetDashboardData(ctx context.Context, p Principal) (*DashboardData, error)
	GetStockMovement(ctx context.Context, p Principal, days int) ([]repository.DailyMovement, error)
	GetRecentActivities(ctx context.Context, p Principal) ([]model.Activity, error)
}

type SalesWindow struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

type DashboardData struct {
	ProductsCount   int64           `json:"products_count"`
	CategoriesCount int64           `json:"categories_count"`
	LowStockCount   int64           `json:"low_stock_count"`
	UsersCount      int64           `json:"users_count"`
	TodaySales      SalesWindow     `json:"today_sales"`
	MonthSales      SalesWindow     `json:"month_sales"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.StockMovementRepository
	activityRepo repository.ActivityRepository
	clock        Clock
}

func NewDashboardService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	saleRepo repository.SaleRepository,
	movementRepo repository.StockMovementRepository,
	activityRepo repository.ActivityRepository,
	clock Clock,
) DashboardService {
	return &dashboardService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		saleRepo:     saleRepo,
		movementRepo: movementRepo,
		activityRepo: activityRepo,
		clock:        clock,
	}
}

func (s *dashboardService) GetDashboardData(ctx context.Context, p Principal) (*DashboardData, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	var data DashboardData
	var err error

	if data.ProductsCount, err = s.productRepo.CountActive(ctx); err != nil {
		return nil, apperror.Wrap(err)
	}
	if data.CategoriesCount, err = s.categoryRepo.CountActiveTopLevel(ctx); err != nil {
		return nil, apperror.Wrap(err)
	}
	// Same predicate as the low-stock listing
	if data.LowStockCount, err = s.productRepo.CountLowStock(ctx); err != nil {
		return nil, apperror.Wrap(err)
	}

	// Users count is scoped to the accounts the caller may manage
	if roles, ok := visibleRoles(p.Role); ok {
		if data.UsersCount, err = s.userRepo.Count(ctx, roles...); err != nil {
			return nil, apperror.Wrap(err)
		}
	}

	dayStart := s.clock.startOfDay()
	today, err := s.saleRepo.Totals(ctx, repository.Period{From: &dayStart})
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	monthStart := s.clock.startOfMonth()
	month, err := s.saleRepo.Totals(ctx, repository.Period{From: &monthStart})
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	total, err := s.saleRepo.Totals(ctx, repository.Period{})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	data.TodaySales = SalesWindow{Amount: today.Revenue, Count: today.Count}
	data.MonthSales = SalesWindow{Amount: month.Revenue, Count: month.Count}
	data.TotalRevenue = total.Revenue
	return &data, nil
}

// GetStockMovement returns daily inbound/outbound totals for the last days
func (s *dashboardService) GetStockMovement(ctx context.Context, p Principal, days int) ([]repository.DailyMovement, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, apperror.NewValidation("days must be positive")
	}

	endDate := s.clock.now()
	startDate := endDate.AddDate(0, 0, -days)
	rows, err := s.movementRepo.DailyTotals(ctx, startDate, endDate.Add(time.Second))
	return rows, apperror.Wrap(err)
}

func (s *dashboardService) GetRecentActivities(ctx context.Context, p Principal) ([]model.Activity, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	activities, err := s.activityRepo.FindRecent(ctx, recentActivityLimit)
	return activities, apperror.Wrap(err)
}
