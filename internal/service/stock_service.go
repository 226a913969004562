package service

import (
	"context"
	"errors"
	"fmt"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// movementHistoryLimit is how many rows GetStockMovements returns
const movementHistoryLimit = 20

type StockService interface {
	UpdateStock(ctx context.Context, p Principal, productID uuid.UUID, req *UpdateStockRequest) (*StockUpdateResult, error)
	GetStockMovements(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
	GetLowStockProducts(ctx context.Context) ([]model.Product, error)
	GetLedgerBalance(ctx context.Context, productID uuid.UUID) (*LedgerBalance, error)
}

// UpdateStockRequest is a signed adjustment: positive adds stock, negative removes it
type UpdateStockRequest struct {
	Quantity int    `json:"quantity" validate:"ne=0"`
	Reason   string `json:"reason" validate:"required,max=50"`
	Notes    string `json:"notes"`
}

type StockUpdateResult struct {
	Product  *model.Product       `json:"product"`
	Movement *model.StockMovement `json:"movement"`
}

// LedgerBalance compares the stored counter with the movement log
type LedgerBalance struct {
	ProductID     uuid.UUID `json:"product_id"`
	Stock         int       `json:"stock"`
	LedgerBalance int       `json:"ledger_balance"`
	Consistent    bool      `json:"consistent"`
}

// ledger is the single write path for stock. Callers run it inside a transaction.
type ledger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

// applyMovement moves stock by a positive magnitude in the given direction and
// appends the matching movement row. OUT never drives stock below zero.
func (l ledger) applyMovement(ctx context.Context, productID uuid.UUID, kind model.MovementType, qty int, reason, notes string, actor uuid.UUID, saleID *uuid.UUID) (*model.StockMovement, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("Quantity must be a positive integer").WithDetail("quantity", qty)
	}

	switch kind {
	case model.MovementOut:
		ok, err := l.products.DecrementStock(ctx, productID, qty)
		if err != nil {
			return nil, apperror.Wrap(err)
		}
		if !ok {
			product, err := l.products.FindByID(ctx, productID)
			if err != nil {
				return nil, notFound(err, "product", productID)
			}
			return nil, apperror.NewInsufficientStock(productID.String(), qty, product.Stock).
				WithDetail("product_name", product.Name)
		}
	case model.MovementIn:
		if err := l.products.IncrementStock(ctx, productID, qty); err != nil {
			return nil, notFound(err, "product", productID)
		}
	default:
		return nil, apperror.NewValidation("Unknown movement type").WithDetail("type", kind)
	}

	movement := &model.StockMovement{
		Type:      kind,
		Quantity:  qty,
		Reason:    reason,
		Notes:     notes,
		ProductID: productID,
		SaleID:    saleID,
		CreatedBy: actor,
	}
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, apperror.Wrap(err)
	}
	return movement, nil
}

type stockService struct {
	ledger   ledger
	txm      *repository.TxManager
	recorder *activity.Recorder
}

func NewStockService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository, txm *repository.TxManager, recorder *activity.Recorder) StockService {
	return &stockService{
		ledger:   ledger{products: productRepo, movements: movementRepo},
		txm:      txm,
		recorder: recorder,
	}
}

func (s *stockService) UpdateStock(ctx context.Context, p Principal, productID uuid.UUID, req *UpdateStockRequest) (*StockUpdateResult, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	kind, magnitude := model.MovementIn, req.Quantity
	if req.Quantity < 0 {
		kind, magnitude = model.MovementOut, -req.Quantity
	}

	var result StockUpdateResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		movement, err := s.ledger.applyMovement(ctx, productID, kind, magnitude, req.Reason, req.Notes, p.UserID, nil)
		if err != nil {
			return err
		}
		product, err := s.ledger.products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		result = StockUpdateResult{Product: product, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:    model.ActionUpdateStock,
		Details:   fmt.Sprintf("Updated stock for %s by %d", result.Product.Name, req.Quantity),
		UserID:    activity.Ref(p.UserID),
		ProductID: activity.Ref(productID),
	})
	s.recorder.Publish(stockEvent("stock_adjusted", result.Product))

	return &result, nil
}

func (s *stockService) GetStockMovements(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	movements, err := s.ledger.movements.FindByProduct(ctx, productID, movementHistoryLimit)
	return movements, apperror.Wrap(err)
}

func (s *stockService) GetLowStockProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.ledger.products.FindLowStock(ctx)
	return products, apperror.Wrap(err)
}

func (s *stockService) GetLedgerBalance(ctx context.Context, productID uuid.UUID) (*LedgerBalance, error) {
	product, err := s.ledger.products.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product", productID)
	}
	balance, err := s.ledger.movements.Balance(ctx, productID)
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	return &LedgerBalance{
		ProductID:     productID,
		Stock:         product.Stock,
		LedgerBalance: balance,
		Consistent:    balance == product.Stock,
	}, nil
}

// stockEvent is the live-feed payload after a stock change
func stockEvent(action string, product *model.Product) activity.Event {
	return activity.Event{
		Type:   "stock_update",
		Action: action,
		Payload: map[string]interface{}{
			"id":        product.ID,
			"name":      product.Name,
			"stock":     product.Stock,
			"low_stock": product.IsLowStock(),
		},
	}
}

// isRecordNotFound is shared by services that probe optional rows
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
