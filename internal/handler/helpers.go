package handler

import (
	"strings"
	"time"

	"vapestore-pos/internal/apperror"
	"vapestore-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var (
	fail      = middleware.Error
	principal = middleware.Principal
)

func invalidJSON(c *fiber.Ctx) error {
	return fail(c, apperror.NewValidation("Invalid JSON"))
}

// paramID parses a path parameter as a UUID
func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NewValidation("Invalid " + name).WithDetail(name, c.Params(name))
	}
	return id, nil
}

// queryID parses an optional UUID query parameter
func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("Invalid " + name).WithDetail(name, raw)
	}
	return &id, nil
}

// queryTime parses an optional RFC 3339 timestamp or a bare date in loc.
// With endOfDay a bare date means the last instant of that day.
func queryTime(c *fiber.Ctx, name string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, apperror.NewValidation("Invalid " + name + ", expected YYYY-MM-DD").WithDetail(name, raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
