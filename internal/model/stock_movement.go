package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Well-known movement reasons; manual adjustments may use any other code
const (
	ReasonInitialStock = "INITIAL_STOCK"
	ReasonSale         = "SALE"
	ReasonRestock      = "RESTOCK"
)

// StockMovement is an immutable ledger row. Quantity is always a non-negative
// magnitude; the direction is carried only by Type.
type StockMovement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Reason    string       `gorm:"type:varchar(50);not null" json:"reason"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	SaleID    *uuid.UUID   `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CreatedBy uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

// Signed returns the movement's contribution to the product's stock
func (m StockMovement) Signed() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
