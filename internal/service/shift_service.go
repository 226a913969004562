package service

import (
	"context"
	"fmt"
	"time"

	"vapestore-pos/internal/activity"
	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/model"
	"vapestore-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShiftService interface {
	StartShift(ctx context.Context, p Principal) (*model.ShiftStarted, error)
	EndShift(ctx context.Context, p Principal, req *EndShiftRequest) (*model.WorkSession, error)
	// GetActiveShift returns today's open session, or nil when there is none
	GetActiveShift(ctx context.Context, p Principal) (*model.WorkSession, error)

	CreateWorkSession(ctx context.Context, p Principal, req *WorkSessionRequest) (*model.WorkSession, error)
	ListWorkSessions(ctx context.Context, p Principal, req *ListWorkSessionsRequest) ([]model.WorkSession, error)

	UpdateUserHourlyRate(ctx context.Context, p Principal, userID uuid.UUID, req *HourlyRateRequest) (*model.UserSettings, error)
	// GetUserSettings initializes the row with the default rate on first read
	GetUserSettings(ctx context.Context, p Principal, userID *uuid.UUID) (*model.UserSettings, error)
}

type EndShiftRequest struct {
	Hours decimal.Decimal `json:"hours" validate:"gt=0,lte=24"`
}

type WorkSessionRequest struct {
	// Calendar day; only year, month and day are used
	Date  time.Time       `json:"date" validate:"required"`
	Hours decimal.Decimal `json:"hours" validate:"gt=0,lte=24"`
}

// ListWorkSessionsRequest bounds are inclusive calendar days
type ListWorkSessionsRequest struct {
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

type HourlyRateRequest struct {
	HourlyRate decimal.Decimal `json:"hourly_rate" validate:"gte=0"`
}

// ShiftPolicy holds the store rules for timer-based shifts
type ShiftPolicy struct {
	// CutoffHour is the store-local hour from which no shift may start
	CutoffHour  int
	DefaultRate decimal.Decimal
}

type shiftService struct {
	sessionRepo  repository.WorkSessionRepository
	settingsRepo repository.UserSettingsRepository
	userRepo     repository.UserRepository
	txm          *repository.TxManager
	recorder     *activity.Recorder
	clock        Clock
	policy       ShiftPolicy
}

func NewShiftService(
	sessionRepo repository.WorkSessionRepository,
	settingsRepo repository.UserSettingsRepository,
	userRepo repository.UserRepository,
	txm *repository.TxManager,
	recorder *activity.Recorder,
	clock Clock,
	policy ShiftPolicy,
) ShiftService {
	return &shiftService{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		txm:          txm,
		recorder:     recorder,
		clock:        clock,
		policy:       policy,
	}
}

func (s *shiftService) StartShift(ctx context.Context, p Principal) (*model.ShiftStarted, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	now := s.clock.now()
	if now.Hour() >= s.policy.CutoffHour {
		return nil, apperror.NewBusinessRule(fmt.Sprintf("A shift cannot be started after %02d:00", s.policy.CutoffHour))
	}
	today := model.SessionDate(now)

	var session *model.WorkSession
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// 1. One session per user per day, open or closed
		if err := s.ensureNoSession(ctx, p.UserID, today); err != nil {
			return err
		}

		// 2. Snapshot the current rate
		settings, err := s.settingsRepo.GetOrCreate(ctx, p.UserID, s.policy.DefaultRate)
		if err != nil {
			return err
		}

		// 3. Hours == 0 marks the open shift
		session = &model.WorkSession{
			UserID:     p.UserID,
			Date:       today,
			Hours:      decimal.Zero,
			HourlyRate: settings.HourlyRate,
			TotalPay:   decimal.Zero,
		}
		return s.sessionRepo.Create(ctx, session)
	})
	if err != nil {
		if _, ok := apperror.AsAppError(err); !ok {
			// A concurrent start may have won the unique (user, date) slot
			if conflict := s.ensureNoSession(ctx, p.UserID, today); conflict != nil {
				return nil, conflict
			}
		}
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionStartShift,
		Details: "Shift started",
		UserID:  activity.Ref(p.UserID),
	})

	return &model.ShiftStarted{
		ShiftID:    session.ID,
		StartTime:  now,
		HourlyRate: session.HourlyRate,
	}, nil
}

func (s *shiftService) ensureNoSession(ctx context.Context, userID uuid.UUID, day time.Time) error {
	existing, err := s.sessionRepo.FindByUserAndDate(ctx, userID, day)
	switch {
	case err == nil && existing.IsOpen():
		return apperror.NewBusinessRule("You already have an active shift today")
	case err == nil:
		return apperror.NewBusinessRule("Today's shift is already completed")
	case isRecordNotFound(err):
		return nil
	default:
		return apperror.Wrap(err)
	}
}

func (s *shiftService) EndShift(ctx context.Context, p Principal, req *EndShiftRequest) (*model.WorkSession, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	today := model.SessionDate(s.clock.now())
	noActive := apperror.NewBusinessRule("No active shift to end")

	var session *model.WorkSession
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := s.sessionRepo.FindByUserAndDate(ctx, p.UserID, today)
		if isRecordNotFound(err) {
			return noActive
		}
		if err != nil {
			return err
		}
		if !open.IsOpen() {
			return noActive
		}

		// Pay uses the rate captured at start, not the current one
		open.Hours = req.Hours
		open.TotalPay = req.Hours.Mul(open.HourlyRate).Round(2)
		closed, err := s.sessionRepo.Close(ctx, open)
		if err != nil {
			return err
		}
		if !closed {
			return noActive
		}
		session = open
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionEndShift,
		Details: fmt.Sprintf("Shift ended: %s hours, %s pay", session.Hours.StringFixed(2), session.TotalPay.StringFixed(2)),
		UserID:  activity.Ref(p.UserID),
	})
	return session, nil
}

func (s *shiftService) GetActiveShift(ctx context.Context, p Principal) (*model.WorkSession, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByUserAndDate(ctx, p.UserID, model.SessionDate(s.clock.now()))
	if isRecordNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err)
	}
	if !session.IsOpen() {
		return nil, nil
	}
	return session, nil
}

// CreateWorkSession records hours directly, replacing any row for that day
func (s *shiftService) CreateWorkSession(ctx context.Context, p Principal, req *WorkSessionRequest) (*model.WorkSession, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	day := model.SessionDate(req.Date)
	var (
		session *model.WorkSession
		existed bool
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.GetOrCreate(ctx, p.UserID, s.policy.DefaultRate)
		if err != nil {
			return err
		}

		_, err = s.sessionRepo.FindByUserAndDate(ctx, p.UserID, day)
		switch {
		case err == nil:
			existed = true
		case !isRecordNotFound(err):
			return err
		}

		session, err = s.sessionRepo.Upsert(ctx, &model.WorkSession{
			UserID:     p.UserID,
			Date:       day,
			Hours:      req.Hours,
			HourlyRate: settings.HourlyRate,
			TotalPay:   req.Hours.Mul(settings.HourlyRate).Round(2),
		})
		return err
	})
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	action, verb := model.ActionCreateWorkSession, "Added"
	if existed {
		action, verb = model.ActionUpdateWorkSession, "Updated"
	}
	s.recorder.Record(ctx, activity.Entry{
		Action:  action,
		Details: fmt.Sprintf("%s work session for %s: %s hours", verb, day.Format("2006-01-02"), req.Hours.String()),
		UserID:  activity.Ref(p.UserID),
	})
	return session, nil
}

func (s *shiftService) ListWorkSessions(ctx context.Context, p Principal, req *ListWorkSessionsRequest) ([]model.WorkSession, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	// Cashiers only ever see their own sessions
	target := p.UserID
	if p.Role != model.RoleCashier && req.UserID != nil {
		target = *req.UserID
	}

	filter := repository.WorkSessionFilter{UserID: &target}
	if req.StartDate != nil {
		from := model.SessionDate(*req.StartDate)
		filter.From = &from
	}
	if req.EndDate != nil {
		to := model.SessionDate(*req.EndDate)
		filter.To = &to
	}

	sessions, err := s.sessionRepo.FindAll(ctx, filter)
	return sessions, apperror.Wrap(err)
}

func (s *shiftService) UpdateUserHourlyRate(ctx context.Context, p Principal, userID uuid.UUID, req *HourlyRateRequest) (*model.UserSettings, error) {
	if err := requireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}

	settings, err := s.settingsRepo.UpsertHourlyRate(ctx, userID, req.HourlyRate)
	if err != nil {
		return nil, apperror.Wrap(err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Action:  model.ActionUpdateHourlyRate,
		Details: fmt.Sprintf("Updated hourly rate for %s: %s per hour", target.Name, req.HourlyRate.StringFixed(2)),
		UserID:  activity.Ref(p.UserID),
	})
	return settings, nil
}

func (s *shiftService) GetUserSettings(ctx context.Context, p Principal, userID *uuid.UUID) (*model.UserSettings, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	target := p.UserID
	if userID != nil {
		target = *userID
	}
	if target != p.UserID {
		if p.Role == model.RoleCashier {
			return nil, apperror.NewForbidden("Insufficient permissions")
		}
		if _, err := s.userRepo.FindByID(ctx, target); err != nil {
			return nil, notFound(err, "user", target)
		}
	}

	settings, err := s.settingsRepo.GetOrCreate(ctx, target, s.policy.DefaultRate)
	return settings, apperror.Wrap(err)
}
