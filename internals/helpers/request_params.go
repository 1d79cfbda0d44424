package helper

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"compaward_backend/internals/helpers/apperror"
)

// ParseUUIDParam reads a uuid path param.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.FieldError(name, name+" is not a valid id")
	}
	return id, nil
}

// ParseUUIDQuery reads an optional uuid query param. Empty returns nil.
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.FieldError(name, name+" is not a valid id")
	}
	return &id, nil
}

// ParseDateQuery reads an optional YYYY-MM-DD query param.
func ParseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, apperror.FieldError(name, name+" must be YYYY-MM-DD")
	}
	return &t, nil
}
