package repository

import (
	"context"
	"time"

	"vapestore-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkSessionFilter struct {
	UserID *uuid.UUID
	// Inclusive calendar-day bounds
	From *time.Time
	To   *time.Time
}

type WorkSessionRepository interface {
	Create(ctx context.Context, session *model.WorkSession) error
	// Close fills hours and pay on a session that is still open. It reports
	// false when the row was already closed.
	Close(ctx context.Context, session *model.WorkSession) (bool, error)
	// Upsert writes the (user, date) row, replacing hours, rate and pay on conflict
	Upsert(ctx context.Context, session *model.WorkSession) (*model.WorkSession, error)
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*model.WorkSession, error)
	FindAll(ctx context.Context, filter WorkSessionFilter) ([]model.WorkSession, error)
}

type workSessionRepo struct {
	db *gorm.DB
}

func NewWorkSessionRepo(db *gorm.DB) WorkSessionRepository {
	return &workSessionRepo{db}
}

func (r *workSessionRepo) Create(ctx context.Context, session *model.WorkSession) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(session).Error
}

func (r *workSessionRepo) Close(ctx context.Context, session *model.WorkSession) (bool, error) {
	res := conn(ctx, r.db).Model(&model.WorkSession{}).
		Where("id = ? AND hours = ?", session.ID, 0).
		Updates(map[string]interface{}{
			"hours":     session.Hours,
			"total_pay": session.TotalPay,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *workSessionRepo) Upsert(ctx context.Context, session *model.WorkSession) (*model.WorkSession, error) {
	err := conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"hours", "hourly_rate", "total_pay", "updated_at"}),
	}).Create(session).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserAndDate(ctx, session.UserID, session.Date)
}

func (r *workSessionRepo) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*model.WorkSession, error) {
	var session model.WorkSession
	err := conn(ctx, r.db).
		Where("user_id = ? AND date = ?", userID, date).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *workSessionRepo) FindAll(ctx context.Context, filter WorkSessionFilter) ([]model.WorkSession, error) {
	var sessions []model.WorkSession
	query := conn(ctx, r.db).Preload("User")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	err := query.Order("date DESC").Find(&sessions).Error
	return sessions, err
}
