package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkSession is one row per user per calendar day. Hours == 0 marks a shift
// that has been started and not yet ended.
type WorkSession struct {
	BaseModel
	UserID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_work_session_user_date" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Date       time.Time       `gorm:"type:date;not null;uniqueIndex:idx_work_session_user_date" json:"date"`
	Hours      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hourly_rate"` // Snapshot taken when the row is written
	TotalPay   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_pay"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

// IsOpen reports whether the shift is still running
func (w *WorkSession) IsOpen() bool {
	return w.Hours.IsZero()
}

// ShiftStarted is returned when a timer-based shift begins
type ShiftStarted struct {
	ShiftID    uuid.UUID       `json:"shift_id"`
	StartTime  time.Time       `json:"start_time"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// SessionDate normalizes a store-local instant to the calendar-day key stored in WorkSession.Date
func SessionDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
