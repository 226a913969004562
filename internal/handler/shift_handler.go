package handler

import (
	"time"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ShiftHandler struct {
	shiftService service.ShiftService
}

func NewShiftHandler(shiftService service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// WorkSessionBody is the manual hours entry; Date is YYYY-MM-DD
type WorkSessionBody struct {
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

// StartShift opens today's timer-based shift
// POST /api/v1/shifts/start
func (h *ShiftHandler) StartShift(c *fiber.Ctx) error {
	started, err := h.shiftService.StartShift(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(started)
}

// EndShift closes today's shift with the hours worked
// POST /api/v1/shifts/end
func (h *ShiftHandler) EndShift(c *fiber.Ctx) error {
	var req service.EndShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	session, err := h.shiftService.EndShift(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(session)
}

// GetActiveShift returns today's open shift, or null
// GET /api/v1/shifts/active
func (h *ShiftHandler) GetActiveShift(c *fiber.Ctx) error {
	session, err := h.shiftService.GetActiveShift(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": session})
}

// CreateWorkSession records hours for a day, replacing any earlier entry
// POST /api/v1/work-sessions
func (h *ShiftHandler) CreateWorkSession(c *fiber.Ctx) error {
	var body WorkSessionBody
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c)
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		return fail(c, apperror.NewValidation("Invalid date, expected YYYY-MM-DD").WithDetail("date", body.Date))
	}

	session, err := h.shiftService.CreateWorkSession(c.UserContext(), principal(c), &service.WorkSessionRequest{
		Date:  date,
		Hours: body.Hours,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetWorkSessions lists sessions, newest day first
// Query params: user_id, start_date, end_date (inclusive, YYYY-MM-DD)
// GET /api/v1/work-sessions
func (h *ShiftHandler) GetWorkSessions(c *fiber.Ctx) error {
	userID, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}
	from, err := queryTime(c, "start_date", time.UTC, false)
	if err != nil {
		return fail(c, err)
	}
	to, err := queryTime(c, "end_date", time.UTC, false)
	if err != nil {
		return fail(c, err)
	}

	sessions, err := h.shiftService.ListWorkSessions(c.UserContext(), principal(c), &service.ListWorkSessionsRequest{
		UserID:    userID,
		StartDate: from,
		EndDate:   to,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(sessions)
}

// GetSettings returns pay settings for the caller or, for admins, ?user_id
// GET /api/v1/users/settings
func (h *ShiftHandler) GetSettings(c *fiber.Ctx) error {
	userID, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}

	settings, err := h.shiftService.GetUserSettings(c.UserContext(), principal(c), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(settings)
}

// UpdateHourlyRate sets a user's hourly rate
// PUT /api/v1/users/:id/hourly-rate
func (h *ShiftHandler) UpdateHourlyRate(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.HourlyRateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	settings, err := h.shiftService.UpdateUserHourlyRate(c.UserContext(), principal(c), userID, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(settings)
}
