package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHourlyRate is assigned when a user's settings are first initialized
var DefaultHourlyRate = decimal.NewFromInt(200)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Name  string `gorm:"type:varchar(255)" json:"name"`
	Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	// Password is nil when authentication is delegated to an external provider
	Password     *string    `gorm:"type:varchar(255)" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'CASHIER';index" json:"role"`
	CreatedBy    *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement

	Settings *UserSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"settings,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashed := string(hashedPassword)
	u.Password = &hashed
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.Password == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email"`
	Role  Role      `json:"role"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:   u.ID,
		Name: u.Name,
		Role: u.Role,
	}
	if u.Email != "" {
		email := u.Email
		resp.Email = &email
	}
	return resp
}

// UserSettings holds per-user pay settings, one row per user
type UserSettings struct {
	BaseModel
	UserID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hourly_rate"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}
