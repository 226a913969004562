package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSettingsRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.UserSettings, error)
	// GetOrCreate returns the settings row, inserting one with defaultRate when absent
	GetOrCreate(ctx context.Context, userID uuid.UUID, defaultRate decimal.Decimal) (*model.UserSettings, error)
	UpsertHourlyRate(ctx context.Context, userID uuid.UUID, rate decimal.Decimal) (*model.UserSettings, error)
}

type userSettingsRepo struct {
	db *gorm.DB
}

func NewUserSettingsRepo(db *gorm.DB) UserSettingsRepository {
	return &userSettingsRepo{db}
}

func (r *userSettingsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.UserSettings, error) {
	var settings model.UserSettings
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userSettingsRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, defaultRate decimal.Decimal) (*model.UserSettings, error) {
	row := model.UserSettings{UserID: userID, HourlyRate: defaultRate}
	// A concurrent initializer may win the insert; the unique user_id keeps one row
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

func (r *userSettingsRepo) UpsertHourlyRate(ctx context.Context, userID uuid.UUID, rate decimal.Decimal) (*model.UserSettings, error) {
	row := model.UserSettings{UserID: userID, HourlyRate: rate}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hourly_rate", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}
