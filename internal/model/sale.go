package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentSBP      PaymentMethod = "SBP"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentSBP:
		return true
	}
	return false
}

type Sale struct {
	BaseModel
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"` // Sum of item subtotals
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	FinalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_amount"` // May go negative, no floor
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null;index" json:"payment_method"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem keeps a price snapshot so later catalog price changes do not touch history
type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal computes quantity × unit price
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// AddLine appends an item and keeps TotalAmount and FinalAmount in step.
// FinalAmount is TotalAmount minus Discount with no floor.
func (s *Sale) AddLine(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) {
	line := LineTotal(quantity, unitPrice)
	s.Items = append(s.Items, SaleItem{
		SaleID:     s.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: line,
	})
	s.TotalAmount = s.TotalAmount.Add(line)
	s.FinalAmount = s.TotalAmount.Sub(s.Discount)
}
