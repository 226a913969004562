package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity action tags
const (
	ActionCreateUser        = "CREATE_USER"
	ActionDeleteUser        = "DELETE_USER"
	ActionCreateCategory    = "CREATE_CATEGORY"
	ActionUpdateCategory    = "UPDATE_CATEGORY"
	ActionCreateBrand       = "CREATE_BRAND"
	ActionUpdateBrand       = "UPDATE_BRAND"
	ActionCreateProduct     = "CREATE_PRODUCT"
	ActionUpdateProduct     = "UPDATE_PRODUCT"
	ActionDeleteProduct     = "DELETE_PRODUCT"
	ActionUpdateStock       = "UPDATE_STOCK"
	ActionCreateSale        = "CREATE_SALE"
	ActionQuickSale         = "QUICK_SALE"
	ActionStartShift        = "START_SHIFT"
	ActionEndShift          = "END_SHIFT"
	ActionCreateWorkSession = "CREATE_WORK_SESSION"
	ActionUpdateWorkSession = "UPDATE_WORK_SESSION"
	ActionUpdateHourlyRate  = "UPDATE_HOURLY_RATE"
)

// Activity is an append-only, best-effort audit row
type Activity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string     `gorm:"type:text" json:"details"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
