package repository

import (
	"context"

	"vapestore-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// FindRecent returns the latest entries with user and product names
	FindRecent(ctx context.Context, limit int) ([]model.Activity, error)
}

type activityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(activity).Error
}

func (r *activityRepo) FindRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := conn(ctx, r.db).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "role")
		}).
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
