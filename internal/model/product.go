package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinStock is the low-stock threshold applied when none is given
const DefaultMinStock = 5

type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	RetailPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"retail_price"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	PuffCount   *int            `json:"puff_count,omitempty"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	MinStock    int             `gorm:"not null" json:"min_stock"`
	IsActive    bool            `gorm:"not null;index" json:"is_active"`

	BrandID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"brand_id"`
	Brand      *Brand     `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`

	StockMovements []StockMovement `gorm:"foreignKey:ProductID" json:"stock_movements,omitempty"`
}

// IsLowStock is recomputed on every read, never stored
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock || p.Stock == 0
}

// Available reports whether the product can be offered on the sales screen
func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}

type Brand struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	LogoURL     string `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

// Category forms a tree through ParentID; in practice one level deep
type Category struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`

	Parent        *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
	Products      []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}
