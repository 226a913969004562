package service

import (
	"context"
	"fmt"
	"time"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	analyticsTopProducts = 10
	summaryTopProducts   = 5
)

type SalesService interface {
	CreateSale(ctx context.Context, p Principal, req *CreateSaleRequest) (*model.Sale, error)
	CreateQuickSale(ctx context.Context, p Principal, req *QuickSaleRequest) (*model.Sale, error)
	GetSale(ctx context.Context, p Principal, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, p Principal, req *ListSalesRequest) ([]model.Sale, error)

	GetSalesAnalytics(ctx context.Context, p Principal, startDate, endDate *time.Time) (*SalesAnalytics, error)
	GetSalesSummary(ctx context.Context, p Principal, period string) (*SalesSummary, error)
	GetPaymentMethodStats(ctx context.Context, p Principal, period string) ([]repository.PaymentStat, error)
}

type SaleItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type CreateSaleRequest struct {
	Items         []SaleItemInput     `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal     `json:"discount" validate:"gte=0"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

type QuickSaleRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	// Zero means one unit
	Quantity      int                 `json:"quantity" validate:"gte=0"`
	Discount      decimal.Decimal     `json:"discount" validate:"gte=0"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

// ListSalesRequest filters the sales journal; every field is optional.
// To is inclusive.
type ListSalesRequest struct {
	From          *time.Time
	To            *time.Time
	UserID        *uuid.UUID
	PaymentMethod model.PaymentMethod
	Limit         int `validate:"gte=0,lte=500"`
}

type TopProduct struct {
	Product       *model.Product  `json:"product"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type SalesAnalytics struct {
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	TotalSales   int64                  `json:"total_sales"`
	TopProducts  []TopProduct           `json:"top_products"`
	SalesByDay   []repository.SalePoint `json:"sales_by_day"`
}

type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int64           `json:"total_sales"`
	TopProducts  []TopProduct    `json:"top_products"`
	Period       string          `json:"period"`
}

type salesService struct {
	saleRepo repository.SaleRepository
	ledger   ledger
	txm      *repository.TxManager
	recorder *activity.Recorder
	clock    Clock
}

func NewSalesService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	txm *repository.TxManager,
	recorder *activity.Recorder,
	clock Clock,
) SalesService {
	return &salesService{
		saleRepo: saleRepo,
		ledger:   ledger{products: productRepo, movements: movementRepo},
		txm:      txm,
		recorder: recorder,
		clock:    clock,
	}
}

func paymentMethodOrDefault(m model.PaymentMethod) (model.PaymentMethod, error) {
	if m == "" {
		return model.PaymentCash, nil
	}
	if !m.Valid() {
		return "", apperror.NewValidation("payment method must be one of CASH, CARD, TRANSFER, SBP").
			WithDetail("payment_method", m)
	}
	return m, nil
}

// CreateSale trusts caller-supplied unit prices. The whole sale commits or
// nothing does: a line without enough stock aborts every line.
func (s *salesService) CreateSale(ctx context.Context, p Principal, req *CreateSaleRequest) (*model.Sale, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	method, err := paymentMethodOrDefault(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	sale := newSale(p.UserID, req.Discount, method)
	for _, line := range req.Items {
		sale.AddLine(line.ProductID, line.Quantity, line.UnitPrice)
	}

	if err := s.commit(ctx, p, sale); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionCreateSale,
		Details: fmt.Sprintf("Created sale for %s", sale.FinalAmount.StringFixed(2)),
		UserID:  activity.Ref(p.UserID),
	})
	return s.hydrate(ctx, sale.ID)
}

// CreateQuickSale sells one product at its current catalog price
func (s *salesService) CreateQuickSale(ctx context.Context, p Principal, req *QuickSaleRequest) (*model.Sale, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	method, err := paymentMethodOrDefault(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.ledger.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFound(err, "product", req.ProductID)
	}
	if product.Stock < quantity {
		return nil, apperror.NewInsufficientStock(product.ID.String(), quantity, product.Stock).
			WithDetail("product_name", product.Name)
	}

	sale := newSale(p.UserID, req.Discount, method)
	sale.AddLine(product.ID, quantity, product.RetailPrice)

	// The stock check above is advisory; the guarded decrement decides
	if err := s.commit(ctx, p, sale); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:    model.ActionQuickSale,
		Details:   fmt.Sprintf("Quick sale: %s x%d for %s", product.Name, quantity, sale.FinalAmount.StringFixed(2)),
		UserID:    activity.Ref(p.UserID),
		ProductID: activity.Ref(product.ID),
	})
	return s.hydrate(ctx, sale.ID)
}

// commit writes the movements and the sale in one transaction
func (s *salesService) commit(ctx context.Context, p Principal, sale *model.Sale) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, item := range sale.Items {
			if _, err := s.ledger.applyMovement(ctx, item.ProductID, model.MovementOut, item.Quantity, model.ReasonSale, "", p.UserID, &sale.ID); err != nil {
				return err
			}
		}
		return s.saleRepo.Create(ctx, sale)
	})
	return apperror.Wrap(err)
}

func (s *salesService) hydrate(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	for _, item := range sale.Items {
		if item.Product != nil {
			s.recorder.Publish(stockEvent("sold", item.Product))
		}
	}
	return sale, nil
}

func (s *salesService) GetSale(ctx context.Context, p Principal, id uuid.UUID) (*model.Sale, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	if p.Role == model.RoleCashier && sale.UserID != p.UserID {
		return nil, apperror.NewForbidden("Insufficient permissions")
	}
	return sale, nil
}

func (s *salesService) ListSales(ctx context.Context, p Principal, req *ListSalesRequest) ([]model.Sale, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		return nil, apperror.NewValidation("unknown payment method").WithDetail("payment_method", req.PaymentMethod)
	}

	filter := repository.SaleFilter{
		Period:        inclusivePeriod(req.From, req.To),
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
		Limit:         req.Limit,
	}
	// Cashiers only see their own receipts
	if p.Role == model.RoleCashier {
		filter.UserID = activity.Ref(p.UserID)
	}

	sales, err := s.saleRepo.FindAll(ctx, filter)
	return sales, apperror.Wrap(err)
}

func (s *salesService) GetSalesAnalytics(ctx context.Context, p Principal, startDate, endDate *time.Time) (*SalesAnalytics, error) {
	if err := requireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	period := inclusivePeriod(startDate, endDate)
	totals, err := s.saleRepo.Totals(ctx, period)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	top, err := s.topProducts(ctx, period, analyticsTopProducts)
	if err != nil {
		return nil, err
	}
	series, err := s.saleRepo.Series(ctx, period)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	return &SalesAnalytics{
		TotalRevenue: totals.Revenue,
		TotalSales:   totals.Count,
		TopProducts:  top,
		SalesByDay:   series,
	}, nil
}

func (s *salesService) GetSalesSummary(ctx context.Context, p Principal, period string) (*SalesSummary, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	start, err := s.clock.periodStart(period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = PeriodToday
	}

	window := repository.Period{From: &start}
	totals, err := s.saleRepo.Totals(ctx, window)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	top, err := s.topProducts(ctx, window, summaryTopProducts)
	if err != nil {
		return nil, err
	}

	return &SalesSummary{
		TotalRevenue: totals.Revenue,
		TotalSales:   totals.Count,
		TopProducts:  top,
		Period:       period,
	}, nil
}

func (s *salesService) GetPaymentMethodStats(ctx context.Context, p Principal, period string) ([]repository.PaymentStat, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	start, err := s.clock.periodStart(period)
	if err != nil {
		return nil, err
	}
	stats, err := s.saleRepo.PaymentBreakdown(ctx, repository.Period{From: &start})
	return stats, apperror.Wrap(err)
}

func (s *salesService) topProducts(ctx context.Context, period repository.Period, limit int) ([]TopProduct, error) {
	rows, err := s.saleRepo.TopProducts(ctx, period, limit)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	top := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		product, err := s.ledger.products.FindByID(ctx, row.ProductID)
		if err != nil && !isRecordNotFound(err) {
			return nil, apperror.Wrap(err)
		}
		top = append(top, TopProduct{
			Product:       product,
			TotalQuantity: row.Quantity,
			TotalRevenue:  row.Revenue,
		})
	}
	return top, nil
}

// inclusivePeriod turns an inclusive [from, to] range into the repository's half-open window
func inclusivePeriod(from, to *time.Time) repository.Period {
	period := repository.Period{From: from}
	if to != nil {
		end := to.Add(time.Nanosecond)
		period.To = &end
	}
	return period
}

func newSale(userID uuid.UUID, discount decimal.Decimal, method model.PaymentMethod) *model.Sale {
	return &model.Sale{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		TotalAmount:   decimal.Zero,
		Discount:      discount,
		FinalAmount:   discount.Neg(),
		PaymentMethod: method,
		UserID:        userID,
	}
}
